package repository

import (
	"context"
	goerrors "errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
)

type firestoreTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreTransactionRepository(client *firestore.Client) repository.TransactionRepository {
	return &firestoreTransactionRepository{
		client: client,
	}
}

func (r *firestoreTransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("transactions").Doc(tx.ID).Set(ctx, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to create transaction", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var tx entity.Transaction

	err := withRetry(ctx, func() error {
		doc, err := r.client.Collection("transactions").Doc(id).Get(ctx)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&tx); err != nil {
			return err
		}
		tx.ID = doc.Ref.ID
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Transaction", err)
		}
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to get transaction", err)
	}

	return &tx, nil
}

func (r *firestoreTransactionRepository) Update(ctx context.Context, tx *entity.Transaction) error {
	tx.UpdatedAt = time.Now()

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("transactions").Doc(tx.ID).Set(ctx, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to update transaction", err)
	}

	return nil
}

// UpdateWithPrecondition re-reads the document inside a store
// transaction, checks its status against allowed, applies mutate and
// writes the result. Concurrent transitions either retry or surface as
// INVALID_STATE after the winning write commits.
func (r *firestoreTransactionRepository) UpdateWithPrecondition(ctx context.Context, id string, allowed []string, mutate func(tx *entity.Transaction) error) (*entity.Transaction, error) {
	docRef := r.client.Collection("transactions").Doc(id)
	var result entity.Transaction

	err := r.client.RunTransaction(ctx, func(ctx context.Context, ft *firestore.Transaction) error {
		doc, err := ft.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Transaction", err)
			}
			return err
		}

		var tx entity.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return errors.Internal("Failed to parse transaction data", err)
		}
		tx.ID = doc.Ref.ID

		if len(allowed) > 0 && !containsStatus(allowed, tx.Status) {
			return errors.InvalidState("Transaction is in status "+tx.Status, nil)
		}

		if err := mutate(&tx); err != nil {
			return err
		}
		tx.UpdatedAt = time.Now()

		if err := ft.Set(docRef, &tx); err != nil {
			return err
		}
		result = tx
		return nil
	})
	if err != nil {
		var appErr *errors.AppError
		if goerrors.As(err, &appErr) {
			return nil, appErr
		}
		if status.Code(err) == codes.Aborted {
			return nil, errors.Conflict("Transaction was modified concurrently")
		}
		if status.Code(err) == codes.Unavailable {
			return nil, errors.ServiceUnavailable("Storage temporarily unavailable", err)
		}
		return nil, errors.Internal("Failed to update transaction", err)
	}

	return &result, nil
}

func (r *firestoreTransactionRepository) GetActiveByProductAndBuyer(ctx context.Context, productID, buyerID string) (*entity.Transaction, error) {
	query := r.client.Collection("transactions").
		Where("productId", "==", productID).
		Where("buyerId", "==", buyerID).
		Where("status", "in", entity.ActiveStatuses).
		Limit(1)

	var found *entity.Transaction

	err := withRetry(ctx, func() error {
		found = nil
		iter := query.Documents(ctx)
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}

		var tx entity.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return err
		}
		tx.ID = doc.Ref.ID
		found = &tx
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to query transactions", err)
	}

	return found, nil
}

// ListByParticipant merges the buyer-side and seller-side queries in
// memory since the store has no OR query across fields.
func (r *firestoreTransactionRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	asBuyer, err := r.queryTransactions(ctx, r.client.Collection("transactions").Where("buyerId", "==", userID))
	if err != nil {
		return nil, 0, err
	}

	asSeller, err := r.queryTransactions(ctx, r.client.Collection("transactions").Where("sellerId", "==", userID))
	if err != nil {
		return nil, 0, err
	}

	merged := append(asBuyer, asSeller...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return paginateTransactions(merged, limit, offset)
}

func (r *firestoreTransactionRepository) ListByEscrowAgent(ctx context.Context, agentID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	query := r.client.Collection("transactions").
		Where("escrowAgentId", "==", agentID).
		OrderBy("createdAt", firestore.Desc)

	txs, err := r.queryTransactions(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return paginateTransactions(txs, limit, offset)
}

func (r *firestoreTransactionRepository) ListAll(ctx context.Context, limit, offset int) ([]*entity.Transaction, int64, error) {
	query := r.client.Collection("transactions").OrderBy("createdAt", firestore.Desc)

	txs, err := r.queryTransactions(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return paginateTransactions(txs, limit, offset)
}

func (r *firestoreTransactionRepository) CreateLog(ctx context.Context, log *entity.TransactionLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now()

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("transaction_logs").Doc(log.ID).Set(ctx, log)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to create transaction log", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) ListLogsByTransactionID(ctx context.Context, transactionID string) ([]*entity.TransactionLog, error) {
	query := r.client.Collection("transaction_logs").
		Where("transactionId", "==", transactionID).
		OrderBy("createdAt", firestore.Asc)

	var logs []*entity.TransactionLog

	err := withRetry(ctx, func() error {
		logs = logs[:0]
		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var log entity.TransactionLog
			if err := doc.DataTo(&log); err != nil {
				return err
			}
			log.ID = doc.Ref.ID
			logs = append(logs, &log)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to list transaction logs", err)
	}

	return logs, nil
}

func (r *firestoreTransactionRepository) queryTransactions(ctx context.Context, query firestore.Query) ([]*entity.Transaction, error) {
	var txs []*entity.Transaction

	err := withRetry(ctx, func() error {
		txs = txs[:0]
		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var tx entity.Transaction
			if err := doc.DataTo(&tx); err != nil {
				return err
			}
			tx.ID = doc.Ref.ID
			txs = append(txs, &tx)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to query transactions", err)
	}

	return txs, nil
}

func paginateTransactions(txs []*entity.Transaction, limit, offset int) ([]*entity.Transaction, int64, error) {
	total := int64(len(txs))

	if offset >= len(txs) {
		return []*entity.Transaction{}, total, nil
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}

	return txs, total, nil
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
