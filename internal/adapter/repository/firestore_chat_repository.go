package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	var chat entity.Chat

	err := withRetry(ctx, func() error {
		doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&chat); err != nil {
			return err
		}
		chat.ID = doc.Ref.ID
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) Update(ctx context.Context, chat *entity.Chat) error {
	chat.UpdatedAt = time.Now()

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to update chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) FindByKey(ctx context.Context, participantsKey, transactionID, productID string) (*entity.Chat, error) {
	// Empty scope values must match exactly, so both filters always
	// apply. A chat scoped to a transaction never collides with the
	// pair's unscoped chat.
	query := r.client.Collection("chats").
		Where("participantsKey", "==", participantsKey).
		Where("transactionId", "==", transactionID).
		Where("productId", "==", productID)

	var found *entity.Chat

	err := withRetry(ctx, func() error {
		found = nil
		iter := query.Limit(1).Documents(ctx)
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return err
		}
		chat.ID = doc.Ref.ID
		found = &chat
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to find chat", err)
	}

	return found, nil
}

func (r *firestoreChatRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	query := r.client.Collection("chats").
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)

	var chats []*entity.Chat
	var total int64

	err := withRetry(ctx, func() error {
		chats = chats[:0]

		countDocs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return err
		}
		total = int64(len(countDocs))

		paged := query
		if limit > 0 {
			paged = paged.Limit(limit)
		}
		if offset > 0 {
			paged = paged.Offset(offset)
		}

		iter := paged.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var chat entity.Chat
			if err := doc.DataTo(&chat); err != nil {
				return err
			}
			chat.ID = doc.Ref.ID
			chats = append(chats, &chat)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, 0, err
		}
		return nil, 0, errors.Internal("Failed to list chats", err)
	}

	return chats, total, nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, chatID string, msg *entity.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.ChatID = chatID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("chats").Doc(chatID).Collection("messages").Doc(msg.ID).Set(ctx, msg)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	// Insertion order: the log reads oldest first.
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").
		OrderBy("createdAt", firestore.Asc)

	var messages []*entity.Message
	var total int64

	err := withRetry(ctx, func() error {
		messages = messages[:0]

		countDocs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return err
		}
		total = int64(len(countDocs))

		paged := query
		if limit > 0 {
			paged = paged.Limit(limit)
		}
		if offset > 0 {
			paged = paged.Offset(offset)
		}

		iter := paged.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var msg entity.Message
			if err := doc.DataTo(&msg); err != nil {
				return err
			}
			msg.ID = doc.Ref.ID
			msg.ChatID = chatID
			messages = append(messages, &msg)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, 0, err
		}
		return nil, 0, errors.Internal("Failed to list messages", err)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").
		Where("read", "==", false)

	now := time.Now()
	count := 0

	err := withRetry(ctx, func() error {
		count = 0
		bulk := r.client.BulkWriter(ctx)

		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var msg entity.Message
			if err := doc.DataTo(&msg); err != nil {
				return err
			}
			// Reading your own messages does not mark them.
			if msg.SenderID == readerID {
				continue
			}

			_, err = bulk.Update(doc.Ref, []firestore.Update{
				{Path: "read", Value: true},
				{Path: "readAt", Value: now},
			})
			if err != nil {
				return err
			}
			count++
		}

		bulk.End()
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return 0, err
		}
		return 0, errors.Internal("Failed to mark messages read", err)
	}

	return count, nil
}
