package router

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/adapter/api/handler"
)

func setupChatRoutes(v1 *echo.Group, h *handler.ChatHandler, m Middlewares) {
	chats := v1.Group("/chats", m.Auth.RequireVerifiedEmail)

	chats.POST("", h.Create)
	chats.GET("", h.List)
	chats.GET("/:id", h.Get)
	chats.GET("/:id/messages", h.GetMessages)
	chats.POST("/:id/read", h.MarkRead)
}
