package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// TodoRepository persists to-do items. Every method is scoped by the owning
// user id; a row belonging to another user behaves as if it does not exist.
type TodoRepository interface {
	// List returns all todos owned by userID, most recently created first.
	List(ctx context.Context, userID string) ([]domain.Todo, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	// Update applies only the fields present in patch and refreshes updated_at.
	Update(ctx context.Context, userID, id string, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, userID, id string) error
	// DeleteCompleted removes every completed todo owned by userID and reports
	// how many rows went away. Zero matches is not an error.
	DeleteCompleted(ctx context.Context, userID string) (int64, error)
}
