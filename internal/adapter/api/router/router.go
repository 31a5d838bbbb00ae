package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gamebit/internal/adapter/api/handler"
	"gamebit/internal/adapter/api/middleware"
)

type Handlers struct {
	User        *handler.UserHandler
	Transaction *handler.TransactionHandler
	Chat        *handler.ChatHandler
	Admin       *handler.AdminHandler
	WebSocket   *handler.WebSocketHandler
}

type Middlewares struct {
	Auth *middleware.AuthMiddleware
	Role *middleware.RoleMiddleware
}

// Setup mounts every route group on the echo instance.
func Setup(e *echo.Echo, h Handlers, m Middlewares) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/ws", h.WebSocket.HandleConnection)

	v1 := e.Group("/v1", m.Auth.Authenticate)

	setupUserRoutes(v1, h.User, m)
	setupTransactionRoutes(v1, h.Transaction, m)
	setupChatRoutes(v1, h.Chat, m)
	setupAdminRoutes(v1, h.Admin, h.Transaction, m)
}
