package handler

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/usecase"
	"gamebit/pkg/errors"
	"gamebit/pkg/response"
	"gamebit/pkg/utils"
)

type TransactionHandler struct {
	transactionUseCase *usecase.TransactionUseCase
}

func NewTransactionHandler(transactionUseCase *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{transactionUseCase: transactionUseCase}
}

func (h *TransactionHandler) Create(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.CreateTransactionInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.CreateTransaction(c.Request().Context(), uid, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, tx)
}

func (h *TransactionHandler) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	p := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("pageSize"))

	txs, total, err := h.transactionUseCase.ListTransactions(c.Request().Context(), uid, p.Limit(), p.Offset())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, txs, total, p.Page, p.PageSize)
}

func (h *TransactionHandler) Get(c echo.Context) error {
	uid := c.Get("uid").(string)

	detail, err := h.transactionUseCase.GetTransaction(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *TransactionHandler) UpdatePrice(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.UpdatePriceInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.UpdatePrice(c.Request().Context(), uid, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) RequestEscrow(c echo.Context) error {
	uid := c.Get("uid").(string)

	tx, err := h.transactionUseCase.RequestEscrow(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) AcceptEscrow(c echo.Context) error {
	uid := c.Get("uid").(string)

	tx, err := h.transactionUseCase.AcceptEscrow(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) DeclineEscrow(c echo.Context) error {
	uid := c.Get("uid").(string)

	tx, err := h.transactionUseCase.DeclineEscrow(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.UpdateStatusInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.UpdateStatus(c.Request().Context(), uid, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) UploadProof(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.UploadProofInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.UploadProof(c.Request().Context(), uid, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) ConfirmShipping(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.ConfirmShippingInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.ConfirmShipping(c.Request().Context(), uid, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) ConfirmDelivery(c echo.Context) error {
	uid := c.Get("uid").(string)

	tx, err := h.transactionUseCase.ConfirmDelivery(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) CreateDispute(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.CreateDisputeInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.CreateDispute(c.Request().Context(), uid, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) Cancel(c echo.Context) error {
	uid := c.Get("uid").(string)

	tx, err := h.transactionUseCase.CancelTransaction(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) Resolve(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input usecase.ResolveInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.ResolveTransaction(c.Request().Context(), uid, c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}

func (h *TransactionHandler) GetLogs(c echo.Context) error {
	uid := c.Get("uid").(string)

	logs, err := h.transactionUseCase.GetTransactionLogs(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, logs)
}

type assignAgentInput struct {
	AgentID string `json:"agentId" validate:"required"`
}

func (h *TransactionHandler) AssignAgent(c echo.Context) error {
	uid := c.Get("uid").(string)

	var input assignAgentInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	tx, err := h.transactionUseCase.AssignEscrowAgent(c.Request().Context(), uid, c.Param("id"), input.AgentID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tx)
}
