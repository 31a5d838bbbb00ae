package usecase

import (
	"context"
	"time"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
	"gamebit/pkg/logger"
)

type TransactionUseCase struct {
	transactionRepo repository.TransactionRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
}

func NewTransactionUseCase(
	transactionRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *TransactionUseCase {
	return &TransactionUseCase{
		transactionRepo: transactionRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
	}
}

type CreateTransactionInput struct {
	ProductID string  `json:"productId" validate:"required"`
	Price     float64 `json:"price" validate:"omitempty,gte=0"`
}

type TransactionDetail struct {
	*entity.Transaction
	Product *entity.Product `json:"product,omitempty"`
	Buyer   *entity.User    `json:"buyer,omitempty"`
	Seller  *entity.User    `json:"seller,omitempty"`
	Agent   *entity.User    `json:"escrowAgent,omitempty"`
}

// CreateTransaction opens a negotiation between the caller (buyer) and
// the product's seller. A buyer can hold at most one active transaction
// per product.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, buyerID string, input CreateTransactionInput) (*entity.Transaction, error) {
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if !product.IsActive() {
		return nil, errors.Validation("Product is not available for purchase", nil)
	}

	if product.SellerID == buyerID {
		return nil, errors.Validation("You cannot buy your own product", nil)
	}

	existing, err := uc.transactionRepo.GetActiveByProductAndBuyer(ctx, input.ProductID, buyerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Conflict("An active transaction for this product already exists")
	}

	price := product.Price
	if input.Price > 0 {
		price = input.Price
	}

	tx := &entity.Transaction{
		ProductID: product.ID,
		BuyerID:   buyerID,
		SellerID:  product.SellerID,
		Status:    entity.StatusNegotiating,
		Price:     price,
	}

	if err := uc.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, tx, buyerID, "transaction_created", "", entity.StatusNegotiating, "")
	logger.Info("Transaction %s created for product %s by buyer %s", tx.ID, tx.ProductID, buyerID)

	return tx, nil
}

type UpdatePriceInput struct {
	Price float64 `json:"price" validate:"required,gte=0"`
}

// UpdatePrice renegotiates the agreed price. Allowed by either party
// until the transaction reaches a terminal state.
func (uc *TransactionUseCase) UpdatePrice(ctx context.Context, userID, transactionID string, input UpdatePriceInput) (*entity.Transaction, error) {
	tx, err := uc.getForParticipant(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, entity.ActiveStatuses, func(t *entity.Transaction) error {
		t.Price = input.Price
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "price_updated", "", "", "")
	return updated, nil
}

// RequestEscrow asks for escrow mediation. Either party may request it
// while negotiating.
func (uc *TransactionUseCase) RequestEscrow(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	tx, err := uc.getForParticipant(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, []string{entity.StatusNegotiating}, func(t *entity.Transaction) error {
		t.ApplyEscrowRequest(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "escrow_requested", entity.StatusNegotiating, entity.StatusEscrowRequested, "")
	return updated, nil
}

// AcceptEscrow records the seller's agreement to escrow mediation and
// moves the transaction to await agent assignment. Seller only.
func (uc *TransactionUseCase) AcceptEscrow(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	tx, err := uc.getForParticipant(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	if tx.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can accept an escrow request", nil)
	}

	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, []string{entity.StatusEscrowRequested}, func(t *entity.Transaction) error {
		t.ApplyEscrowAccept()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "escrow_accepted", entity.StatusEscrowRequested, entity.StatusEscrowAssigned, "")
	return updated, nil
}

// DeclineEscrow rejects the request and returns the transaction to
// direct negotiation. Seller only.
func (uc *TransactionUseCase) DeclineEscrow(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	tx, err := uc.getForParticipant(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	if tx.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can decline an escrow request", nil)
	}

	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, []string{entity.StatusEscrowRequested}, func(t *entity.Transaction) error {
		t.ApplyEscrowDecline()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "escrow_declined", entity.StatusEscrowRequested, entity.StatusNegotiating, "")
	return updated, nil
}

// AssignEscrowAgent binds an approved, uninvolved escrow agent to a
// transaction whose escrow request the seller has accepted. Admin only.
func (uc *TransactionUseCase) AssignEscrowAgent(ctx context.Context, adminID, transactionID, agentID string) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	agent, err := uc.userRepo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.InvalidAgent("Escrow agent does not exist", err)
		}
		return nil, err
	}

	if !agent.IsApprovedEscrowAgent() {
		return nil, errors.InvalidAgent("User is not an approved escrow agent", nil)
	}
	if tx.IsParticipant(agentID) {
		return nil, errors.InvalidAgent("Escrow agent cannot be a party to the transaction", nil)
	}

	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, []string{entity.StatusEscrowAssigned}, func(t *entity.Transaction) error {
		t.ApplyAgentAssignment(agentID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, adminID, "agent_assigned", "", "", "agent: "+agentID)
	logger.Info("Escrow agent %s assigned to transaction %s", agentID, transactionID)

	return updated, nil
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus applies one of the four progress markers. Each marker is
// gated on the caller's role, not on the current status.
func (uc *TransactionUseCase) UpdateStatus(ctx context.Context, userID, transactionID string, input UpdateStatusInput) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	switch input.Status {
	case entity.StatusPaymentInitiated:
		if tx.BuyerID != userID {
			return nil, errors.Forbidden("Only the buyer can initiate payment", nil)
		}
	case entity.StatusProofUploaded:
		if tx.SellerID != userID {
			return nil, errors.Forbidden("Only the seller can upload proof", nil)
		}
	case entity.StatusShippingConfirmed:
		if tx.SellerID != userID && !tx.IsAssignedAgent(userID) {
			return nil, errors.Forbidden("Only the seller or the escrow agent can confirm shipping", nil)
		}
	case entity.StatusDeliveryConfirmed:
		if tx.BuyerID != userID && !tx.IsAssignedAgent(userID) {
			return nil, errors.Forbidden("Only the buyer or the escrow agent can confirm delivery", nil)
		}
	default:
		return nil, errors.Validation("Status must be one of: payment_initiated, proof_uploaded, shipping_confirmed, delivery_confirmed", nil)
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, nil, func(t *entity.Transaction) error {
		t.Status = input.Status
		switch input.Status {
		case entity.StatusShippingConfirmed:
			t.ShippingConfirmed = true
		case entity.StatusDeliveryConfirmed:
			t.DeliveryConfirmed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "status_updated", fromStatus, input.Status, "")
	return updated, nil
}

type UploadProofInput struct {
	Images []string `json:"images" validate:"required,min=1,dive,url"`
}

// UploadProof attaches proof-of-goods images. Seller only.
func (uc *TransactionUseCase) UploadProof(ctx context.Context, userID, transactionID string, input UploadProofInput) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if tx.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can upload proof", nil)
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, nil, func(t *entity.Transaction) error {
		t.ApplyProof(input.Images)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "proof_uploaded", fromStatus, entity.StatusProofUploaded, "")
	return updated, nil
}

type ConfirmShippingInput struct {
	TrackingNumber string `json:"trackingNumber" validate:"required"`
}

// ConfirmShipping records the shipment and tracking number. Seller
// only; the assigned agent instead uses the generic status marker.
func (uc *TransactionUseCase) ConfirmShipping(ctx context.Context, userID, transactionID string, input ConfirmShippingInput) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if tx.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can confirm shipping", nil)
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, nil, func(t *entity.Transaction) error {
		t.ApplyShipping(input.TrackingNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "shipping_confirmed", fromStatus, entity.StatusShippingConfirmed, "tracking: "+input.TrackingNumber)
	return updated, nil
}

// ConfirmDelivery records receipt of the goods. Buyer only; the
// assigned agent instead uses the generic status marker.
func (uc *TransactionUseCase) ConfirmDelivery(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if tx.BuyerID != userID {
		return nil, errors.Forbidden("Only the buyer can confirm delivery", nil)
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, nil, func(t *entity.Transaction) error {
		t.ApplyDelivery()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "delivery_confirmed", fromStatus, entity.StatusDeliveryConfirmed, "")
	return updated, nil
}

type CreateDisputeInput struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

// CreateDispute freezes the transaction for agent resolution. Either
// party may dispute while the transaction is still live.
func (uc *TransactionUseCase) CreateDispute(ctx context.Context, userID, transactionID string, input CreateDisputeInput) (*entity.Transaction, error) {
	tx, err := uc.getForParticipant(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, entity.ActiveStatuses, func(t *entity.Transaction) error {
		t.ApplyDispute(input.Reason)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "dispute_created", fromStatus, entity.StatusDispute, input.Reason)
	logger.Warn("Dispute opened on transaction %s by %s", transactionID, userID)

	return updated, nil
}

// CancelTransaction abandons a live transaction.
func (uc *TransactionUseCase) CancelTransaction(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	tx, err := uc.getForParticipant(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, entity.ActiveStatuses, func(t *entity.Transaction) error {
		t.Status = entity.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "transaction_cancelled", fromStatus, entity.StatusCancelled, "")
	return updated, nil
}

type ResolveInput struct {
	Notes string `json:"notes" validate:"required,min=10"`
}

// ResolveTransaction closes a transaction as completed. Only the
// assigned escrow agent can resolve.
func (uc *TransactionUseCase) ResolveTransaction(ctx context.Context, userID, transactionID string, input ResolveInput) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !tx.IsAssignedAgent(userID) {
		return nil, errors.Forbidden("Only the assigned escrow agent can resolve this transaction", nil)
	}

	fromStatus := tx.Status
	updated, err := uc.transactionRepo.UpdateWithPrecondition(ctx, tx.ID, entity.ActiveStatuses, func(t *entity.Transaction) error {
		t.ApplyResolution(input.Notes, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, updated, userID, "transaction_resolved", fromStatus, entity.StatusCompleted, input.Notes)
	logger.Info("Transaction %s resolved by agent %s", transactionID, userID)

	return updated, nil
}

// ListTransactions returns transactions visible to the caller: admins
// see everything, approved agents see their assignments plus their own
// trades, everyone else sees trades they are party to.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	if user.IsAdmin() {
		return uc.transactionRepo.ListAll(ctx, limit, offset)
	}

	if user.IsApprovedEscrowAgent() {
		return uc.transactionRepo.ListByEscrowAgent(ctx, userID, limit, offset)
	}

	return uc.transactionRepo.ListByParticipant(ctx, userID, limit, offset)
}

// GetTransaction returns a transaction with its related records
// resolved. Visible to participants, the assigned agent and admins.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, transactionID string) (*TransactionDetail, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := uc.authorizeView(ctx, userID, tx); err != nil {
		return nil, err
	}

	detail := &TransactionDetail{Transaction: tx}

	if product, err := uc.productRepo.GetByID(ctx, tx.ProductID); err == nil {
		detail.Product = product
	}
	if buyer, err := uc.userRepo.GetByID(ctx, tx.BuyerID); err == nil {
		detail.Buyer = buyer
	}
	if seller, err := uc.userRepo.GetByID(ctx, tx.SellerID); err == nil {
		detail.Seller = seller
	}
	if tx.EscrowAgentID != "" {
		if agent, err := uc.userRepo.GetByID(ctx, tx.EscrowAgentID); err == nil {
			detail.Agent = agent
		}
	}

	return detail, nil
}

// GetTransactionLogs returns the audit trail, oldest first.
func (uc *TransactionUseCase) GetTransactionLogs(ctx context.Context, userID, transactionID string) ([]*entity.TransactionLog, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := uc.authorizeView(ctx, userID, tx); err != nil {
		return nil, err
	}

	return uc.transactionRepo.ListLogsByTransactionID(ctx, transactionID)
}

func (uc *TransactionUseCase) getForParticipant(ctx context.Context, userID, transactionID string) (*entity.Transaction, error) {
	tx, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !tx.IsParticipant(userID) {
		return nil, errors.Forbidden("You are not a party to this transaction", nil)
	}

	return tx, nil
}

func (uc *TransactionUseCase) authorizeView(ctx context.Context, userID string, tx *entity.Transaction) error {
	if tx.IsParticipant(userID) || tx.IsAssignedAgent(userID) {
		return nil
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return nil
	}

	return errors.Forbidden("You do not have access to this transaction", nil)
}

func (uc *TransactionUseCase) appendLog(ctx context.Context, tx *entity.Transaction, actorID, action, from, to, notes string) {
	log := &entity.TransactionLog{
		TransactionID: tx.ID,
		ActorID:       actorID,
		Action:        action,
		FromStatus:    from,
		ToStatus:      to,
		Notes:         notes,
	}
	if err := uc.transactionRepo.CreateLog(ctx, log); err != nil {
		logger.Error("Failed to write transaction log for %s: %v", tx.ID, err)
	}
}
