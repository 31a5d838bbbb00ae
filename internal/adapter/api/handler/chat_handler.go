package handler

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/usecase"
	"gamebit/pkg/errors"
	"gamebit/pkg/response"
	"gamebit/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{chatUseCase: chatUseCase}
}

func (h *ChatHandler) Create(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.CreateChatInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.GetOrCreateChat(c.Request().Context(), uid, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	p := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("pageSize"))

	chats, total, err := h.chatUseCase.GetUserChats(c.Request().Context(), uid, p.Limit(), p.Offset())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, chats, total, p.Page, p.PageSize)
}

func (h *ChatHandler) Get(c echo.Context) error {
	uid := c.Get("uid").(string)

	chat, err := h.chatUseCase.GetChatByID(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	uid := c.Get("uid").(string)
	p := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("pageSize"))

	messages, total, err := h.chatUseCase.GetChatMessages(c.Request().Context(), uid, c.Param("id"), p.Limit(), p.Offset())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, p.Page, p.PageSize)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	uid := c.Get("uid").(string)

	count, err := h.chatUseCase.MarkChatRead(c.Request().Context(), uid, c.Param("id"), "")
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"markedRead": count})
}
