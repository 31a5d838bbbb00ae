package usecase

import (
	"context"
	"strings"
	"time"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	ws "gamebit/internal/infrastructure/websocket"
	"gamebit/pkg/errors"
	"gamebit/pkg/logger"
)

// Gateway is the realtime fan-out surface backed by the websocket
// manager. exceptConnID suppresses the echo to the connection that
// produced the event; pass "" to reach everyone in the room.
type Gateway interface {
	BroadcastToRoom(chatID string, payload []byte, exceptConnID string)
	SendToUser(userID string, payload []byte)
	IsOnline(userID string) bool
	SetTyping(chatID, userID string, isTyping bool) time.Time
}

type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	gateway  Gateway
}

func NewChatUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository, gateway Gateway) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
		gateway:  gateway,
	}
}

type CreateChatInput struct {
	RecipientID   string `json:"recipientId" validate:"required"`
	TransactionID string `json:"transactionId"`
	ProductID     string `json:"productId"`
}

type ChatSummary struct {
	*entity.Chat
	OtherUser   *entity.User `json:"otherUser,omitempty"`
	OtherOnline bool         `json:"otherOnline"`
}

// GetOrCreateChat returns the existing chat for the pair and scope, or
// creates one. Creation is idempotent for an unordered pair.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, userID string, input CreateChatInput) (*entity.Chat, error) {
	if input.RecipientID == userID {
		return nil, errors.Validation("You cannot open a chat with yourself", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, input.RecipientID); err != nil {
		return nil, err
	}

	key := entity.ParticipantsKeyFor(userID, input.RecipientID)

	existing, err := uc.chatRepo.FindByKey(ctx, key, input.TransactionID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	chat := &entity.Chat{
		Participants:    []string{userID, input.RecipientID},
		ParticipantsKey: key,
		TransactionID:   input.TransactionID,
		ProductID:       input.ProductID,
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	logger.Info("Chat %s created between %s", chat.ID, key)
	return chat, nil
}

// GetUserChats lists the caller's chats with the counterparty resolved
// and their live presence attached.
func (uc *ChatUseCase) GetUserChats(ctx context.Context, userID string, limit, offset int) ([]*ChatSummary, int64, error) {
	chats, total, err := uc.chatRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := &ChatSummary{Chat: chat}
		if otherID := chat.OtherParticipant(userID); otherID != "" {
			if other, err := uc.userRepo.GetByID(ctx, otherID); err == nil {
				summary.OtherUser = other
			}
			summary.OtherOnline = uc.gateway.IsOnline(otherID)
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

func (uc *ChatUseCase) GetChatByID(ctx context.Context, userID, chatID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	return chat, nil
}

func (uc *ChatUseCase) GetChatMessages(ctx context.Context, userID, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetChatByID(ctx, userID, chatID); err != nil {
		return nil, 0, err
	}

	return uc.chatRepo.ListMessages(ctx, chatID, limit, offset)
}

type SendMessageInput struct {
	ChatID      string   `json:"chat_id" validate:"required"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,url"`
}

// SendMessage persists the message, bumps the chat, then fans it out
// to the room. Persistence always comes first so a delivered message
// is never lost on restart.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput, originConnID string) (*entity.Message, error) {
	if strings.TrimSpace(input.Content) == "" && len(input.Attachments) == 0 {
		return nil, errors.Validation("Message must have content or attachments", nil)
	}

	chat, err := uc.GetChatByID(ctx, userID, input.ChatID)
	if err != nil {
		return nil, err
	}

	msg := &entity.Message{
		SenderID:    userID,
		Content:     input.Content,
		Attachments: input.Attachments,
	}
	if err := uc.chatRepo.CreateMessage(ctx, chat.ID, msg); err != nil {
		return nil, err
	}

	now := msg.CreatedAt
	chat.LastMessageAt = &now
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		logger.Error("Failed to bump chat %s: %v", chat.ID, err)
	}

	uc.gateway.BroadcastToRoom(chat.ID, ws.Encode(ws.EventNewMessage, msg), originConnID)
	return msg, nil
}

// MarkChatRead flips the caller's unread messages and notifies the
// room only when something actually changed.
func (uc *ChatUseCase) MarkChatRead(ctx context.Context, userID, chatID string, originConnID string) (int, error) {
	if _, err := uc.GetChatByID(ctx, userID, chatID); err != nil {
		return 0, err
	}

	count, err := uc.chatRepo.MarkMessagesRead(ctx, chatID, userID)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		uc.gateway.BroadcastToRoom(chatID, ws.Encode(ws.EventMessagesRead, ws.MessagesReadBroadcast{
			ChatID: chatID,
			UserID: userID,
			Count:  count,
		}), originConnID)
	}

	return count, nil
}

// HandleTyping broadcasts a typing indicator to the room. The state is
// never persisted; it expires on its own after a few seconds.
func (uc *ChatUseCase) HandleTyping(ctx context.Context, userID, chatID string, isTyping bool, originConnID string) error {
	if _, err := uc.GetChatByID(ctx, userID, chatID); err != nil {
		return err
	}

	expiry := uc.gateway.SetTyping(chatID, userID, isTyping)

	uc.gateway.BroadcastToRoom(chatID, ws.Encode(ws.EventTyping, ws.TypingBroadcast{
		ChatID:    chatID,
		UserID:    userID,
		IsTyping:  isTyping,
		ExpiresAt: expiry,
	}), originConnID)

	return nil
}

// NotifyJoin tells the room a participant's connection joined it.
func (uc *ChatUseCase) NotifyJoin(ctx context.Context, userID, chatID string, originConnID string) error {
	if _, err := uc.GetChatByID(ctx, userID, chatID); err != nil {
		return err
	}

	uc.gateway.BroadcastToRoom(chatID, ws.Encode(ws.EventUserJoined, ws.UserJoinedBroadcast{
		ChatID: chatID,
		UserID: userID,
	}), originConnID)

	return nil
}
