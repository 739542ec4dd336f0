package client

import (
	"context"
	"sync"

	"github.com/taskdeck/backend/domain"
)

// ErrMutationInFlight is returned when a mutation is requested while another
// one is still awaiting its server acknowledgement. It mirrors the UI
// affordance of disabling a trigger while its request is pending.
var ErrMutationInFlight = domain.NewError(domain.ErrCodeConflict, "another change is still in flight")

// API is the surface of Client consumed by the view-model.
type API interface {
	ListTodos(ctx context.Context) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, title string) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) error
}

// ViewModel holds the authoritative list fetched from the server and derives
// the filtered views and counts from it. It never patches the list locally:
// a mutation round-trips to the server, invalidates the cache, then refetches
// the whole list before the change becomes visible.
type ViewModel struct {
	api    API
	cache  *Cache
	userID string

	mu     sync.Mutex
	list   []domain.Todo
	filter Filter
	busy   bool
}

// NewViewModel builds a view-model for the given user. cache may be nil, in
// which case every refresh hits the server.
func NewViewModel(api API, cache *Cache, userID string) *ViewModel {
	return &ViewModel{
		api:    api,
		cache:  cache,
		userID: userID,
		filter: FilterAll,
	}
}

// Refresh loads the list, preferring a fresh cache entry over a server
// round-trip.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	if todos, ok := vm.cache.Get(vm.userID); ok {
		vm.mu.Lock()
		vm.list = todos
		vm.mu.Unlock()
		return nil
	}
	return vm.refetch(ctx)
}

// SetFilter selects the visible view. Filtering is local; no server call.
func (vm *ViewModel) SetFilter(f Filter) error {
	if !f.Valid() {
		return domain.NewError(domain.ErrCodeInvalid, "filter must be all, active or completed")
	}
	vm.mu.Lock()
	vm.filter = f
	vm.mu.Unlock()
	return nil
}

func (vm *ViewModel) Filter() Filter {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.filter
}

// Visible returns the todos under the current filter.
func (vm *ViewModel) Visible() []domain.Todo {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.filter.Apply(vm.list)
}

// Counts returns the active/completed tallies for the current list.
func (vm *ViewModel) Counts() Counts {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return CountTodos(vm.list)
}

// Add creates a todo with the given title.
func (vm *ViewModel) Add(ctx context.Context, title string) error {
	return vm.mutate(ctx, func(ctx context.Context) error {
		_, err := vm.api.CreateTodo(ctx, title)
		return err
	})
}

// Rename changes a todo's title without touching its completed flag.
func (vm *ViewModel) Rename(ctx context.Context, id, title string) error {
	return vm.mutate(ctx, func(ctx context.Context) error {
		_, err := vm.api.UpdateTodo(ctx, id, domain.TodoPatch{Title: &title})
		return err
	})
}

// SetCompleted toggles a todo without touching its title.
func (vm *ViewModel) SetCompleted(ctx context.Context, id string, completed bool) error {
	return vm.mutate(ctx, func(ctx context.Context) error {
		_, err := vm.api.UpdateTodo(ctx, id, domain.TodoPatch{Completed: &completed})
		return err
	})
}

// Remove deletes a single todo.
func (vm *ViewModel) Remove(ctx context.Context, id string) error {
	return vm.mutate(ctx, func(ctx context.Context) error {
		return vm.api.DeleteTodo(ctx, id)
	})
}

// ClearCompleted deletes every completed todo.
func (vm *ViewModel) ClearCompleted(ctx context.Context) error {
	return vm.mutate(ctx, func(ctx context.Context) error {
		return vm.api.DeleteCompleted(ctx)
	})
}

// mutate runs one server mutation, then invalidates the cache and refetches.
// On failure the held list is left untouched. Only one mutation may be in
// flight at a time.
func (vm *ViewModel) mutate(ctx context.Context, op func(ctx context.Context) error) error {
	vm.mu.Lock()
	if vm.busy {
		vm.mu.Unlock()
		return ErrMutationInFlight
	}
	vm.busy = true
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		vm.busy = false
		vm.mu.Unlock()
	}()

	if err := op(ctx); err != nil {
		return err
	}

	_ = vm.cache.Invalidate(vm.userID)
	return vm.refetch(ctx)
}

func (vm *ViewModel) refetch(ctx context.Context) error {
	todos, err := vm.api.ListTodos(ctx)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	vm.list = todos
	vm.mu.Unlock()

	if vm.cache != nil {
		_ = vm.cache.Put(vm.userID, todos)
	}
	return nil
}
