package repository

import (
	"context"

	"gamebit/internal/domain/entity"
)

// TransactionRepository persists transactions and their audit logs.
//
// UpdateWithPrecondition runs mutate inside a store transaction after
// re-reading the document and checking its status is one of allowed.
// It returns an INVALID_STATE error when the check fails, which makes
// racing transitions lose cleanly instead of clobbering each other.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction) error
	UpdateWithPrecondition(ctx context.Context, id string, allowed []string, mutate func(tx *entity.Transaction) error) (*entity.Transaction, error)
	GetActiveByProductAndBuyer(ctx context.Context, productID, buyerID string) (*entity.Transaction, error)
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error)
	ListByEscrowAgent(ctx context.Context, agentID string, limit, offset int) ([]*entity.Transaction, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]*entity.Transaction, int64, error)
	CreateLog(ctx context.Context, log *entity.TransactionLog) error
	ListLogsByTransactionID(ctx context.Context, transactionID string) ([]*entity.TransactionLog, error)
}
