package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// Patch carries the optional profile fields; nil fields stay untouched.
type Patch struct {
	Email *string
	Name  *string
}

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) Get(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) Update(ctx context.Context, userID string, patch Patch) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, domain.NewError(domain.ErrCodeInvalid, "a valid email is required")
		}
		user.Email = email
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "name must not be empty")
		}
		user.Name = name
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
