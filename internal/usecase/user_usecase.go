package usecase

import (
	"context"
	"time"

	"gamebit/internal/domain/entity"
	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
	"gamebit/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// ApplyForSeller files a seller application. Pending and approved
// applications cannot be filed again.
func (uc *UserUseCase) ApplyForSeller(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Capabilities.Seller != nil {
		if user.Capabilities.Seller.Approved {
			return nil, errors.Conflict("You are already an approved seller")
		}
		return nil, errors.Conflict("Your seller application is pending review")
	}

	user.Capabilities.Seller = &entity.RoleGrant{AppliedAt: time.Now()}
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User %s applied for seller role", userID)
	return user, nil
}

// ApplyForEscrowAgent files an escrow agent application.
func (uc *UserUseCase) ApplyForEscrowAgent(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Capabilities.EscrowAgent != nil {
		if user.Capabilities.EscrowAgent.Approved {
			return nil, errors.Conflict("You are already an approved escrow agent")
		}
		return nil, errors.Conflict("Your escrow agent application is pending review")
	}

	user.Capabilities.EscrowAgent = &entity.RoleGrant{AppliedAt: time.Now()}
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User %s applied for escrow agent role", userID)
	return user, nil
}
