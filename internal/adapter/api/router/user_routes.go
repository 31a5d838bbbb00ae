package router

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/adapter/api/handler"
)

func setupUserRoutes(v1 *echo.Group, h *handler.UserHandler, m Middlewares) {
	users := v1.Group("/users")

	users.GET("/me", h.GetMe)
	users.POST("/me/apply-seller", h.ApplySeller, m.Auth.RequireVerifiedEmail)
	users.POST("/me/apply-escrow", h.ApplyEscrowAgent, m.Auth.RequireVerifiedEmail)
}
