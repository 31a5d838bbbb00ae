package handler

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/usecase"
	"gamebit/pkg/response"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{adminUseCase: adminUseCase}
}

func (h *AdminHandler) ListPendingSellers(c echo.Context) error {
	users, err := h.adminUseCase.ListPendingSellers(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}

func (h *AdminHandler) ApproveSeller(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.adminUseCase.ApproveSeller(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) RejectSeller(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.adminUseCase.RejectSeller(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) ListPendingEscrowAgents(c echo.Context) error {
	users, err := h.adminUseCase.ListPendingEscrowAgents(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}

func (h *AdminHandler) ApproveEscrowAgent(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.adminUseCase.ApproveEscrowAgent(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) RejectEscrowAgent(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.adminUseCase.RejectEscrowAgent(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) ListEscrowAgents(c echo.Context) error {
	users, err := h.adminUseCase.ListEscrowAgents(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}
