package repository

import (
	"context"

	"gamebit/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	Update(ctx context.Context, chat *entity.Chat) error
	// FindByKey looks up an existing chat for the sorted participant
	// pair, scoped to a transaction and product. Returns nil, nil when
	// no chat matches.
	FindByKey(ctx context.Context, participantsKey, transactionID, productID string) (*entity.Chat, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)
	CreateMessage(ctx context.Context, chatID string, msg *entity.Message) error
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)
	// MarkMessagesRead flips every unread message in the chat not sent
	// by readerID and returns how many were flipped.
	MarkMessagesRead(ctx context.Context, chatID, readerID string) (int, error)
}
