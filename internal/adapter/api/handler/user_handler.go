package handler

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/usecase"
	"gamebit/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{userUseCase: userUseCase}
}

func (h *UserHandler) GetMe(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) ApplySeller(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.ApplyForSeller(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) ApplyEscrowAgent(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.ApplyForEscrowAgent(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
