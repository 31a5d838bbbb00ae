package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamebit/internal/domain/entity"
	"gamebit/pkg/errors"
)

func setupTransactionTest(t *testing.T) (*TransactionUseCase, *fakeTransactionRepo, *fakeProductRepo, *fakeUserRepo) {
	t.Helper()

	userRepo := newFakeUserRepo()
	productRepo := newFakeProductRepo()
	txRepo := newFakeTransactionRepo()

	userRepo.put(&entity.User{ID: "buyer", Email: "buyer@test.dev", EmailVerified: true})
	userRepo.put(&entity.User{ID: "seller", Email: "seller@test.dev", EmailVerified: true,
		Capabilities: entity.Capabilities{Seller: &entity.RoleGrant{Approved: true, AppliedAt: time.Now()}}})
	userRepo.put(&entity.User{ID: "agent", Email: "agent@test.dev", EmailVerified: true,
		Capabilities: entity.Capabilities{EscrowAgent: &entity.RoleGrant{Approved: true, AppliedAt: time.Now()}}})
	userRepo.put(&entity.User{ID: "admin", Email: "admin@test.dev", EmailVerified: true,
		Capabilities: entity.Capabilities{Admin: true}})

	productRepo.put(&entity.Product{ID: "prod-1", SellerID: "seller", Title: "Rare account", Price: 150, Status: entity.ProductStatusActive})

	return NewTransactionUseCase(txRepo, productRepo, userRepo), txRepo, productRepo, userRepo
}

func createNegotiation(t *testing.T, uc *TransactionUseCase) *entity.Transaction {
	t.Helper()
	tx, err := uc.CreateTransaction(context.Background(), "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)
	return tx
}

func TestCreateTransaction(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)

	tx := createNegotiation(t, uc)

	assert.Equal(t, entity.StatusNegotiating, tx.Status)
	assert.Equal(t, "buyer", tx.BuyerID)
	assert.Equal(t, "seller", tx.SellerID)
	assert.Equal(t, 150.0, tx.Price)
	assert.False(t, tx.EscrowRequested)
}

func TestCreateTransactionOwnProduct(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)

	_, err := uc.CreateTransaction(context.Background(), "seller", CreateTransactionInput{ProductID: "prod-1"})

	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestCreateTransactionInactiveProduct(t *testing.T) {
	uc, _, productRepo, _ := setupTransactionTest(t)
	productRepo.put(&entity.Product{ID: "prod-2", SellerID: "seller", Status: entity.ProductStatusSold})

	_, err := uc.CreateTransaction(context.Background(), "buyer", CreateTransactionInput{ProductID: "prod-2"})

	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestCreateTransactionDuplicateActive(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)

	createNegotiation(t, uc)
	_, err := uc.CreateTransaction(context.Background(), "buyer", CreateTransactionInput{ProductID: "prod-1"})

	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestCreateTransactionAfterCancellation(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.CancelTransaction(ctx, "buyer", tx.ID)
	require.NoError(t, err)

	_, err = uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	assert.NoError(t, err)
}

func TestUpdatePriceUntilTerminal(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)

	updated, err := uc.UpdatePrice(ctx, "seller", tx.ID, UpdatePriceInput{Price: 120})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)

	// Still renegotiable while an escrow request is open.
	_, err = uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	updated, err = uc.UpdatePrice(ctx, "buyer", tx.ID, UpdatePriceInput{Price: 110})
	require.NoError(t, err)
	assert.Equal(t, 110.0, updated.Price)

	_, err = uc.CancelTransaction(ctx, "buyer", tx.ID)
	require.NoError(t, err)

	_, err = uc.UpdatePrice(ctx, "seller", tx.ID, UpdatePriceInput{Price: 100})
	assert.True(t, errors.Is(err, "INVALID_STATE"))
}

func TestEscrowRequestAcceptAssign(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)

	requested, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusEscrowRequested, requested.Status)
	assert.Equal(t, "buyer", requested.EscrowRequestedBy)

	// Only the seller decides on an escrow request.
	_, err = uc.AcceptEscrow(ctx, "buyer", tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	accepted, err := uc.AcceptEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)
	assert.True(t, accepted.EscrowAccepted)
	assert.Equal(t, entity.StatusEscrowAssigned, accepted.Status)
	assert.Empty(t, accepted.EscrowAgentID)

	assigned, err := uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusEscrowAssigned, assigned.Status)
	assert.Equal(t, "agent", assigned.EscrowAgentID)
}

func TestEscrowRequestRequiresNegotiating(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)

	_, err = uc.RequestEscrow(ctx, "seller", tx.ID)
	assert.True(t, errors.Is(err, "INVALID_STATE"))
}

func TestDeclineEscrowRollsBack(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)

	_, err = uc.DeclineEscrow(ctx, "buyer", tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	declined, err := uc.DeclineEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusNegotiating, declined.Status)
	assert.False(t, declined.EscrowRequested)
	assert.Empty(t, declined.EscrowRequestedBy)

	// Escrow can be requested again after a decline.
	_, err = uc.RequestEscrow(ctx, "seller", tx.ID)
	assert.NoError(t, err)
}

func TestAssignAgentRequiresSellerAcceptance(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)

	// Not even requested yet.
	_, err := uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	assert.True(t, errors.Is(err, "INVALID_STATE"))

	_, err = uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)

	// Requested but the seller has not accepted.
	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	assert.True(t, errors.Is(err, "INVALID_STATE"))
}

func TestAssignAgentValidation(t *testing.T) {
	uc, _, _, userRepo := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	_, err = uc.AcceptEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)

	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "nobody")
	assert.True(t, errors.Is(err, "INVALID_AGENT"))

	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "buyer")
	assert.True(t, errors.Is(err, "INVALID_AGENT"))

	userRepo.put(&entity.User{ID: "pending-agent", EmailVerified: true,
		Capabilities: entity.Capabilities{EscrowAgent: &entity.RoleGrant{AppliedAt: time.Now()}}})
	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "pending-agent")
	assert.True(t, errors.Is(err, "INVALID_AGENT"))
}

func TestStatusMarkerRoleGates(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()
	tx := createNegotiation(t, uc)

	tests := []struct {
		status  string
		allowed []string
		denied  []string
	}{
		{entity.StatusPaymentInitiated, []string{"buyer"}, []string{"seller", "agent"}},
		{entity.StatusProofUploaded, []string{"seller"}, []string{"buyer", "agent"}},
		{entity.StatusShippingConfirmed, []string{"seller"}, []string{"buyer"}},
		{entity.StatusDeliveryConfirmed, []string{"buyer"}, []string{"seller"}},
	}

	for _, tt := range tests {
		for _, user := range tt.denied {
			_, err := uc.UpdateStatus(ctx, user, tx.ID, UpdateStatusInput{Status: tt.status})
			assert.True(t, errors.Is(err, "FORBIDDEN"), "%s should be denied %s", user, tt.status)
		}
		for _, user := range tt.allowed {
			updated, err := uc.UpdateStatus(ctx, user, tx.ID, UpdateStatusInput{Status: tt.status})
			assert.NoError(t, err)
			assert.Equal(t, tt.status, updated.Status)
		}
	}
}

func TestStatusMarkerAgentShortcut(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	_, err = uc.AcceptEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)
	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	require.NoError(t, err)

	updated, err := uc.UpdateStatus(ctx, "agent", tx.ID, UpdateStatusInput{Status: entity.StatusShippingConfirmed})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShippingConfirmed, updated.Status)

	updated, err = uc.UpdateStatus(ctx, "agent", tx.ID, UpdateStatusInput{Status: entity.StatusDeliveryConfirmed})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeliveryConfirmed, updated.Status)
}

func TestStatusMarkerRejectsOtherStatuses(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	tx := createNegotiation(t, uc)

	for _, status := range []string{entity.StatusCompleted, entity.StatusCancelled, entity.StatusDispute, "bogus"} {
		_, err := uc.UpdateStatus(context.Background(), "buyer", tx.ID, UpdateStatusInput{Status: status})
		assert.True(t, errors.Is(err, "VALIDATION_ERROR"), "status %s should be rejected", status)
	}
}

func TestUploadProofForcesStatus(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()
	tx := createNegotiation(t, uc)

	_, err := uc.UploadProof(ctx, "buyer", tx.ID, UploadProofInput{Images: []string{"https://img.test/1.png"}})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	updated, err := uc.UploadProof(ctx, "seller", tx.ID, UploadProofInput{Images: []string{"https://img.test/1.png"}})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProofUploaded, updated.Status)
	assert.Equal(t, []string{"https://img.test/1.png"}, updated.ProofImages)

	// Additional uploads accumulate.
	updated, err = uc.UploadProof(ctx, "seller", tx.ID, UploadProofInput{Images: []string{"https://img.test/2.png"}})
	require.NoError(t, err)
	assert.Len(t, updated.ProofImages, 2)
}

func TestConfirmShippingAndDelivery(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()
	tx := createNegotiation(t, uc)

	shipped, err := uc.ConfirmShipping(ctx, "seller", tx.ID, ConfirmShippingInput{TrackingNumber: "TRACK-99"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShippingConfirmed, shipped.Status)
	assert.Equal(t, "TRACK-99", shipped.ShippingTracking)
	assert.True(t, shipped.ShippingConfirmed)

	delivered, err := uc.ConfirmDelivery(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeliveryConfirmed, delivered.Status)
	assert.True(t, delivered.DeliveryConfirmed)
}

func TestFullEscrowLifecycle(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)

	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	_, err = uc.AcceptEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)
	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	require.NoError(t, err)

	paid, err := uc.UpdateStatus(ctx, "buyer", tx.ID, UpdateStatusInput{Status: entity.StatusPaymentInitiated})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaymentInitiated, paid.Status)

	proofed, err := uc.UploadProof(ctx, "seller", tx.ID, UploadProofInput{
		Images: []string{"https://img.test/a.png", "https://img.test/b.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProofUploaded, proofed.Status)
	assert.Len(t, proofed.ProofImages, 2)

	shipped, err := uc.ConfirmShipping(ctx, "seller", tx.ID, ConfirmShippingInput{TrackingNumber: "XYZ123"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusShippingConfirmed, shipped.Status)
	assert.Equal(t, "XYZ123", shipped.ShippingTracking)

	delivered, err := uc.ConfirmDelivery(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDeliveryConfirmed, delivered.Status)

	resolved, err := uc.ResolveTransaction(ctx, "agent", tx.ID, ResolveInput{Notes: "all parties satisfied"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, resolved.Status)
	assert.Equal(t, "all parties satisfied", resolved.ResolutionNotes)
	assert.NotNil(t, resolved.CompletedAt)
}

func TestDisputeAndResolve(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	_, err = uc.AcceptEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)
	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	require.NoError(t, err)

	disputed, err := uc.CreateDispute(ctx, "buyer", tx.ID, CreateDisputeInput{Reason: "item never arrived"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDispute, disputed.Status)
	assert.Equal(t, "item never arrived", disputed.DisputeReason)

	_, err = uc.ResolveTransaction(ctx, "buyer", tx.ID, ResolveInput{Notes: "refund issued to buyer"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	resolved, err := uc.ResolveTransaction(ctx, "agent", tx.ID, ResolveInput{Notes: "refund issued to buyer"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, resolved.Status)
	assert.Equal(t, "refund issued to buyer", resolved.ResolutionNotes)
	assert.NotNil(t, resolved.CompletedAt)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.CancelTransaction(ctx, "seller", tx.ID)
	require.NoError(t, err)

	_, err = uc.CancelTransaction(ctx, "buyer", tx.ID)
	assert.True(t, errors.Is(err, "INVALID_STATE"))

	_, err = uc.CreateDispute(ctx, "buyer", tx.ID, CreateDisputeInput{Reason: "changed my mind here"})
	assert.True(t, errors.Is(err, "INVALID_STATE"))

	_, err = uc.RequestEscrow(ctx, "buyer", tx.ID)
	assert.True(t, errors.Is(err, "INVALID_STATE"))
}

func TestOutsiderIsForbidden(t *testing.T) {
	uc, _, _, userRepo := setupTransactionTest(t)
	ctx := context.Background()
	userRepo.put(&entity.User{ID: "stranger", EmailVerified: true})

	tx := createNegotiation(t, uc)

	_, err := uc.CancelTransaction(ctx, "stranger", tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.GetTransaction(ctx, "stranger", tx.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestGetTransactionResolvesRelations(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)

	detail, err := uc.GetTransaction(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Product)
	assert.Equal(t, "prod-1", detail.Product.ID)
	require.NotNil(t, detail.Buyer)
	assert.Equal(t, "buyer", detail.Buyer.ID)
	require.NotNil(t, detail.Seller)
	assert.Equal(t, "seller", detail.Seller.ID)
	assert.Nil(t, detail.Agent)

	// Admins can view without being a party.
	_, err = uc.GetTransaction(ctx, "admin", tx.ID)
	assert.NoError(t, err)
}

func TestListTransactionsByRole(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	_, err = uc.AcceptEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)
	_, err = uc.AssignEscrowAgent(ctx, "admin", tx.ID, "agent")
	require.NoError(t, err)

	buyerTxs, total, err := uc.ListTransactions(ctx, "buyer", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, buyerTxs, 1)

	agentTxs, _, err := uc.ListTransactions(ctx, "agent", 20, 0)
	require.NoError(t, err)
	assert.Len(t, agentTxs, 1)

	adminTxs, _, err := uc.ListTransactions(ctx, "admin", 20, 0)
	require.NoError(t, err)
	assert.Len(t, adminTxs, 1)
}

func TestLifecycleIsLogged(t *testing.T) {
	uc, _, _, _ := setupTransactionTest(t)
	ctx := context.Background()

	tx := createNegotiation(t, uc)
	_, err := uc.RequestEscrow(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	_, err = uc.DeclineEscrow(ctx, "seller", tx.ID)
	require.NoError(t, err)

	logs, err := uc.GetTransactionLogs(ctx, "buyer", tx.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "transaction_created", logs[0].Action)
	assert.Equal(t, "escrow_requested", logs[1].Action)
	assert.Equal(t, "escrow_declined", logs[2].Action)
	assert.Equal(t, entity.StatusNegotiating, logs[2].ToStatus)
}
