package router

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/adapter/api/handler"
)

func setupAdminRoutes(v1 *echo.Group, h *handler.AdminHandler, txHandler *handler.TransactionHandler, m Middlewares) {
	admin := v1.Group("/admin", m.Role.AdminOnly)

	admin.GET("/sellers/pending", h.ListPendingSellers)
	admin.POST("/sellers/:id/approve", h.ApproveSeller)
	admin.POST("/sellers/:id/reject", h.RejectSeller)

	admin.GET("/escrow/pending", h.ListPendingEscrowAgents)
	admin.POST("/escrow/:id/approve", h.ApproveEscrowAgent)
	admin.POST("/escrow/:id/reject", h.RejectEscrowAgent)
	admin.GET("/escrow/agents", h.ListEscrowAgents)

	admin.POST("/transactions/:id/assign-agent", txHandler.AssignAgent)
}
