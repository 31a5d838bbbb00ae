package router

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/adapter/api/handler"
)

func setupTransactionRoutes(v1 *echo.Group, h *handler.TransactionHandler, m Middlewares) {
	txs := v1.Group("/transactions", m.Auth.RequireVerifiedEmail)

	txs.POST("", h.Create)
	txs.GET("", h.List)
	txs.GET("/:id", h.Get)
	txs.GET("/:id/logs", h.GetLogs)

	txs.PATCH("/:id/price", h.UpdatePrice)
	txs.POST("/:id/request-escrow", h.RequestEscrow)
	txs.POST("/:id/accept-escrow", h.AcceptEscrow)
	txs.POST("/:id/decline-escrow", h.DeclineEscrow)
	txs.PATCH("/:id/status", h.UpdateStatus)
	txs.POST("/:id/proof", h.UploadProof)
	txs.POST("/:id/shipping", h.ConfirmShipping)
	txs.POST("/:id/delivery", h.ConfirmDelivery)
	txs.POST("/:id/dispute", h.CreateDispute)
	txs.POST("/:id/cancel", h.Cancel)
	txs.POST("/:id/resolve", h.Resolve)
}
