package entity

import "time"

const (
	StatusNegotiating       = "negotiating"
	StatusEscrowRequested   = "escrow_requested"
	StatusEscrowAssigned    = "escrow_assigned"
	StatusPaymentInitiated  = "payment_initiated"
	StatusProofUploaded     = "proof_uploaded"
	StatusShippingConfirmed = "shipping_confirmed"
	StatusDeliveryConfirmed = "delivery_confirmed"
	StatusDispute           = "dispute"
	StatusCompleted         = "completed"
	StatusCancelled         = "cancelled"
)

// ValidStatuses is the closed set of persistable transaction states.
var ValidStatuses = []string{
	StatusNegotiating,
	StatusEscrowRequested,
	StatusEscrowAssigned,
	StatusPaymentInitiated,
	StatusProofUploaded,
	StatusShippingConfirmed,
	StatusDeliveryConfirmed,
	StatusDispute,
	StatusCompleted,
	StatusCancelled,
}

// ActiveStatuses are the states in which a transaction still blocks a
// new transaction for the same product and buyer.
var ActiveStatuses = []string{
	StatusNegotiating,
	StatusEscrowRequested,
	StatusEscrowAssigned,
	StatusPaymentInitiated,
	StatusProofUploaded,
	StatusShippingConfirmed,
	StatusDeliveryConfirmed,
	StatusDispute,
}

func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID                string     `firestore:"-" json:"id"`
	ProductID         string     `firestore:"productId" json:"productId"`
	BuyerID           string     `firestore:"buyerId" json:"buyerId"`
	SellerID          string     `firestore:"sellerId" json:"sellerId"`
	EscrowAgentID     string     `firestore:"escrowAgentId,omitempty" json:"escrowAgentId,omitempty"`
	Status            string     `firestore:"status" json:"status"`
	Price             float64    `firestore:"price" json:"price"`
	EscrowRequested   bool       `firestore:"escrowRequested" json:"escrowRequested"`
	EscrowRequestedBy string     `firestore:"escrowRequestedBy,omitempty" json:"escrowRequestedBy,omitempty"`
	EscrowAccepted    bool       `firestore:"escrowAccepted" json:"escrowAccepted"`
	ProofImages       []string   `firestore:"proofImages,omitempty" json:"proofImages,omitempty"`
	ShippingTracking  string     `firestore:"shippingTracking,omitempty" json:"shippingTracking,omitempty"`
	ShippingConfirmed bool       `firestore:"shippingConfirmed" json:"shippingConfirmed"`
	DeliveryConfirmed bool       `firestore:"deliveryConfirmed" json:"deliveryConfirmed"`
	DisputeReason     string     `firestore:"disputeReason,omitempty" json:"disputeReason,omitempty"`
	ResolutionNotes   string     `firestore:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	CompletedAt       *time.Time `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt         time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

func (t *Transaction) IsTerminal() bool {
	return IsTerminalStatus(t.Status)
}

func (t *Transaction) IsParticipant(userID string) bool {
	return t.BuyerID == userID || t.SellerID == userID
}

func (t *Transaction) IsAssignedAgent(userID string) bool {
	return t.EscrowAgentID != "" && t.EscrowAgentID == userID
}

// ApplyEscrowRequest marks the transaction as awaiting counterparty
// agreement on escrow mediation.
func (t *Transaction) ApplyEscrowRequest(requestedBy string) {
	t.Status = StatusEscrowRequested
	t.EscrowRequested = true
	t.EscrowRequestedBy = requestedBy
}

// ApplyEscrowAccept records the seller's agreement and moves the
// transaction to await agent assignment.
func (t *Transaction) ApplyEscrowAccept() {
	t.EscrowAccepted = true
	t.Status = StatusEscrowAssigned
}

// ApplyEscrowDecline rolls the transaction back to direct negotiation.
// The declined state itself is never persisted.
func (t *Transaction) ApplyEscrowDecline() {
	t.Status = StatusNegotiating
	t.EscrowRequested = false
	t.EscrowRequestedBy = ""
	t.EscrowAccepted = false
}

func (t *Transaction) ApplyAgentAssignment(agentID string) {
	t.EscrowAgentID = agentID
}

func (t *Transaction) ApplyProof(images []string) {
	t.ProofImages = append(t.ProofImages, images...)
	t.Status = StatusProofUploaded
}

func (t *Transaction) ApplyShipping(tracking string) {
	t.ShippingTracking = tracking
	t.ShippingConfirmed = true
	t.Status = StatusShippingConfirmed
}

func (t *Transaction) ApplyDelivery() {
	t.DeliveryConfirmed = true
	t.Status = StatusDeliveryConfirmed
}

func (t *Transaction) ApplyDispute(reason string) {
	t.DisputeReason = reason
	t.Status = StatusDispute
}

func (t *Transaction) ApplyResolution(notes string, at time.Time) {
	t.ResolutionNotes = notes
	t.Status = StatusCompleted
	t.CompletedAt = &at
}

// TransactionLog is an append-only audit record of a lifecycle event.
type TransactionLog struct {
	ID            string    `firestore:"-" json:"id"`
	TransactionID string    `firestore:"transactionId" json:"transactionId"`
	ActorID       string    `firestore:"actorId" json:"actorId"`
	Action        string    `firestore:"action" json:"action"`
	FromStatus    string    `firestore:"fromStatus,omitempty" json:"fromStatus,omitempty"`
	ToStatus      string    `firestore:"toStatus,omitempty" json:"toStatus,omitempty"`
	Notes         string    `firestore:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
}
