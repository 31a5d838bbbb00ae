package usecase

import (
	"context"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
	"gamebit/pkg/logger"
)

type AdminUseCase struct {
	userRepo repository.UserRepository
}

func NewAdminUseCase(userRepo repository.UserRepository) *AdminUseCase {
	return &AdminUseCase{userRepo: userRepo}
}

func (uc *AdminUseCase) ListPendingSellers(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.ListPendingSellers(ctx)
}

func (uc *AdminUseCase) ListPendingEscrowAgents(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.ListPendingEscrowAgents(ctx)
}

func (uc *AdminUseCase) ListEscrowAgents(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.ListApprovedEscrowAgents(ctx)
}

func (uc *AdminUseCase) ApproveSeller(ctx context.Context, adminID, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Capabilities.Seller == nil {
		return nil, errors.NotFound("Seller application", nil)
	}
	if user.Capabilities.Seller.Approved {
		return nil, errors.Conflict("Seller application is already approved")
	}

	user.Capabilities.Seller.Approved = true
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Admin %s approved seller application of %s", adminID, userID)
	return user, nil
}

// RejectSeller clears the application so the user can reapply.
func (uc *AdminUseCase) RejectSeller(ctx context.Context, adminID, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Capabilities.Seller == nil {
		return nil, errors.NotFound("Seller application", nil)
	}

	user.Capabilities.Seller = nil
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Admin %s rejected seller application of %s", adminID, userID)
	return user, nil
}

func (uc *AdminUseCase) ApproveEscrowAgent(ctx context.Context, adminID, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Capabilities.EscrowAgent == nil {
		return nil, errors.NotFound("Escrow agent application", nil)
	}
	if user.Capabilities.EscrowAgent.Approved {
		return nil, errors.Conflict("Escrow agent application is already approved")
	}

	user.Capabilities.EscrowAgent.Approved = true
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Admin %s approved escrow agent application of %s", adminID, userID)
	return user, nil
}

func (uc *AdminUseCase) RejectEscrowAgent(ctx context.Context, adminID, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Capabilities.EscrowAgent == nil {
		return nil, errors.NotFound("Escrow agent application", nil)
	}

	user.Capabilities.EscrowAgent = nil
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Admin %s rejected escrow agent application of %s", adminID, userID)
	return user, nil
}
