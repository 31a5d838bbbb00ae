package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User

	err := withRetry(ctx, func() error {
		doc, err := r.client.Collection("users").Doc(id).Get(ctx)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&user); err != nil {
			return err
		}
		user.ID = doc.Ref.ID
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to update user", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetPresence(ctx context.Context, userID string, online bool) error {
	now := time.Now()
	updates := []firestore.Update{
		{Path: "online", Value: online},
		{Path: "updatedAt", Value: now},
	}
	if !online {
		updates = append(updates, firestore.Update{Path: "lastSeenAt", Value: now})
	}

	err := withRetry(ctx, func() error {
		_, err := r.client.Collection("users").Doc(userID).Update(ctx, updates)
		return err
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("User", err)
		}
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return err
		}
		return errors.Internal("Failed to update presence", err)
	}

	return nil
}

func (r *firestoreUserRepository) ListPendingSellers(ctx context.Context) ([]*entity.User, error) {
	query := r.client.Collection("users").
		Where("capabilities.seller.approved", "==", false).
		OrderBy("capabilities.seller.appliedAt", firestore.Asc)

	return r.queryUsers(ctx, query, "Failed to list pending sellers")
}

func (r *firestoreUserRepository) ListPendingEscrowAgents(ctx context.Context) ([]*entity.User, error) {
	query := r.client.Collection("users").
		Where("capabilities.escrowAgent.approved", "==", false).
		OrderBy("capabilities.escrowAgent.appliedAt", firestore.Asc)

	return r.queryUsers(ctx, query, "Failed to list pending escrow agents")
}

func (r *firestoreUserRepository) ListApprovedEscrowAgents(ctx context.Context) ([]*entity.User, error) {
	query := r.client.Collection("users").
		Where("capabilities.escrowAgent.approved", "==", true)

	return r.queryUsers(ctx, query, "Failed to list escrow agents")
}

func (r *firestoreUserRepository) queryUsers(ctx context.Context, query firestore.Query, failMsg string) ([]*entity.User, error) {
	var users []*entity.User

	err := withRetry(ctx, func() error {
		users = users[:0]
		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var user entity.User
			if err := doc.DataTo(&user); err != nil {
				return err
			}
			user.ID = doc.Ref.ID
			users = append(users, &user)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, "SERVICE_UNAVAILABLE") {
			return nil, err
		}
		return nil, errors.Internal(failMsg, err)
	}

	return users, nil
}
