package handler

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"gamebit/internal/adapter/api/middleware"
	wsinfra "gamebit/internal/infrastructure/websocket"
	"gamebit/internal/usecase"
	"gamebit/pkg/errors"
	"gamebit/pkg/logger"
	"gamebit/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	manager     *wsinfra.Manager
	chatUseCase *usecase.ChatUseCase
	auth        *middleware.AuthMiddleware
}

func NewWebSocketHandler(manager *wsinfra.Manager, chatUseCase *usecase.ChatUseCase, auth *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		manager:     manager,
		chatUseCase: chatUseCase,
		auth:        auth,
	}
}

// HandleConnection authenticates the ?token= query parameter, upgrades
// the connection and runs the read loop until the client goes away.
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthenticated("Token query parameter is required", nil))
	}

	uid, err := h.auth.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("Websocket upgrade failed for user %s: %v", uid, err)
		return err
	}

	client := h.manager.Register(c.Request().Context(), uid, conn)

	client.Send(wsinfra.Encode(wsinfra.EventConnected, map[string]string{
		"connection_id": client.ID,
		"user_id":       uid,
	}))

	go client.WritePump()
	client.ReadPump(h.handleEvent)

	return nil
}

func (h *WebSocketHandler) handleEvent(client *wsinfra.Client, data []byte) {
	var event wsinfra.Event
	if err := json.Unmarshal(data, &event); err != nil {
		h.sendError(client, "Invalid event format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch event.Type {
	case wsinfra.EventJoin:
		var payload wsinfra.JoinPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.ChatID == "" {
			h.sendError(client, "join requires chat_id")
			return
		}
		if err := h.chatUseCase.NotifyJoin(ctx, client.UserID, payload.ChatID, client.ID); err != nil {
			h.sendError(client, errorMessage(err))
			return
		}
		h.manager.JoinRoom(client, payload.ChatID)

	case wsinfra.EventLeave:
		var payload wsinfra.JoinPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.ChatID == "" {
			h.sendError(client, "leave requires chat_id")
			return
		}
		h.manager.LeaveRoom(client, payload.ChatID)

	case wsinfra.EventTyping:
		var payload wsinfra.TypingPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.ChatID == "" {
			h.sendError(client, "typing requires chat_id")
			return
		}
		if err := h.chatUseCase.HandleTyping(ctx, client.UserID, payload.ChatID, payload.IsTyping, client.ID); err != nil {
			h.sendError(client, errorMessage(err))
		}

	case wsinfra.EventSend:
		var payload wsinfra.SendPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.ChatID == "" {
			h.sendError(client, "send requires chat_id")
			return
		}
		// The origin socket is excluded from the fan-out; the client
		// renders its own send optimistically.
		_, err := h.chatUseCase.SendMessage(ctx, client.UserID, usecase.SendMessageInput{
			ChatID:      payload.ChatID,
			Content:     payload.Content,
			Attachments: payload.Attachments,
		}, client.ID)
		if err != nil {
			h.sendError(client, errorMessage(err))
		}

	case wsinfra.EventMarkRead:
		var payload wsinfra.MarkReadPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.ChatID == "" {
			h.sendError(client, "mark_read requires chat_id")
			return
		}
		if _, err := h.chatUseCase.MarkChatRead(ctx, client.UserID, payload.ChatID, client.ID); err != nil {
			h.sendError(client, errorMessage(err))
		}

	case wsinfra.EventPing:
		client.Send(wsinfra.Encode(wsinfra.EventPong, nil))

	default:
		h.sendError(client, "Unknown event type: "+event.Type)
	}
}

func (h *WebSocketHandler) sendError(client *wsinfra.Client, message string) {
	client.Send(wsinfra.Encode(wsinfra.EventError, wsinfra.ErrorPayload{Message: message}))
}

func errorMessage(err error) string {
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal error"
}
