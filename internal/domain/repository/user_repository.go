package repository

import (
	"context"

	"gamebit/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetPresence(ctx context.Context, userID string, online bool) error
	ListPendingSellers(ctx context.Context) ([]*entity.User, error)
	ListPendingEscrowAgents(ctx context.Context) ([]*entity.User, error)
	ListApprovedEscrowAgents(ctx context.Context) ([]*entity.User, error)
}
