package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type todoRecord struct {
	todo domain.Todo
	seq  uint64
}

// TodoRepository is an in-memory TodoRepository used by tests and local runs
// without Postgres. It mirrors the SQL implementation's semantics, including
// ownership scoping and partial updates.
type TodoRepository struct {
	mu    sync.RWMutex
	todos map[string]todoRecord
	seq   uint64
	now   func() time.Time
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{
		todos: make(map[string]todoRecord),
		now:   time.Now,
	}
}

// SetClock overrides the time source. Tests use it to pin timestamps.
func (r *TodoRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *TodoRepository) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]todoRecord, 0, len(r.todos))
	for _, rec := range r.todos {
		if rec.todo.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].todo.CreatedAt.Equal(records[j].todo.CreatedAt) {
			return records[i].seq > records[j].seq
		}
		return records[i].todo.CreatedAt.After(records[j].todo.CreatedAt)
	})

	todos := make([]domain.Todo, 0, len(records))
	for _, rec := range records {
		todos = append(todos, rec.todo)
	}
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.todos[id]
	if !ok || rec.todo.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	todo := rec.todo
	return &todo, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	now := r.now()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	r.seq++
	r.todos[todo.ID] = todoRecord{todo: *todo, seq: r.seq}

	created := *todo
	return &created, nil
}

func (r *TodoRepository) Update(ctx context.Context, userID, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.todos[id]
	if !ok || rec.todo.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}

	if patch.Title != nil {
		rec.todo.Title = *patch.Title
	}
	if patch.Completed != nil {
		rec.todo.Completed = *patch.Completed
	}
	rec.todo.UpdatedAt = r.now()
	r.todos[id] = rec

	updated := rec.todo
	return &updated, nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.todos[id]
	if !ok || rec.todo.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *TodoRepository) DeleteCompleted(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, rec := range r.todos {
		if rec.todo.UserID == userID && rec.todo.Completed {
			delete(r.todos, id)
			removed++
		}
	}
	return removed, nil
}

var _ repository.TodoRepository = (*TodoRepository)(nil)
