package todo

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// UseCase implements the five todo operations. Every operation requires
// a resolved caller identity and scopes all repository access to that caller.
type UseCase struct {
	todos  repository.TodoRepository
	logger *zap.Logger
}

func New(todos repository.TodoRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:  todos,
		logger: logger,
	}
}

func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.todos.List(ctx, userID)
}

func (uc *UseCase) Create(ctx context.Context, userID, title string) (*domain.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	valid, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}

	created, err := uc.todos.Create(ctx, &domain.Todo{
		UserID: userID,
		Title:  valid,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("todo created", zap.String("todo_id", created.ID))
	return created, nil
}

func (uc *UseCase) Update(ctx context.Context, userID, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if patch.IsEmpty() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "provide at least one field: title or completed")
	}

	if patch.Title != nil {
		valid, err := ValidateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &valid
	}

	return uc.todos.Update(ctx, userID, id, patch)
}

func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.todos.Delete(ctx, userID, id)
}

// DeleteCompleted removes every completed todo owned by the caller. A run that
// matches nothing still succeeds; bulk deletes are naturally idempotent.
func (uc *UseCase) DeleteCompleted(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	removed, err := uc.todos.DeleteCompleted(ctx, userID)
	if err != nil {
		return err
	}
	if removed > 0 {
		uc.logger.Debug("completed todos cleared", zap.Int64("removed", removed))
	}
	return nil
}
