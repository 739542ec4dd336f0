package client

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/taskdeck/backend/domain"
)

// fakeAPI is an in-process stand-in for the server. It applies mutations to
// its own list so refetches observe server truth, and can be told to fail or
// block to exercise the view-model's failure and in-flight behavior.
type fakeAPI struct {
	mu      sync.Mutex
	todos   []domain.Todo
	nextID  int
	fail    error
	block   chan struct{}
	entered chan struct{}
	once    sync.Once
	listGen int
}

func (f *fakeAPI) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listGen++
	return append([]domain.Todo(nil), f.todos...), nil
}

func (f *fakeAPI) CreateTodo(ctx context.Context, title string) (*domain.Todo, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	todo := domain.Todo{
		ID:        string(rune('a' + f.nextID)),
		UserID:    "u1",
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.todos = append([]domain.Todo{todo}, f.todos...)
	return &todo, nil
}

func (f *fakeAPI) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.todos {
		if f.todos[i].ID == id {
			if patch.Title != nil {
				f.todos[i].Title = *patch.Title
			}
			if patch.Completed != nil {
				f.todos[i].Completed = *patch.Completed
			}
			todo := f.todos[i]
			return &todo, nil
		}
	}
	return nil, domain.ErrTodoNotFound
}

func (f *fakeAPI) DeleteTodo(ctx context.Context, id string) error {
	if err := f.gate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.todos {
		if f.todos[i].ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return domain.ErrTodoNotFound
}

func (f *fakeAPI) DeleteCompleted(ctx context.Context) error {
	if err := f.gate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.todos[:0]
	for _, todo := range f.todos {
		if !todo.Completed {
			kept = append(kept, todo)
		}
	}
	f.todos = kept
	return nil
}

func (f *fakeAPI) gate() error {
	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeAPI) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listGen
}

func TestViewModel_MutationRefetches(t *testing.T) {
	api := &fakeAPI{}
	vm := NewViewModel(api, nil, "u1")
	ctx := context.Background()

	if err := vm.Add(ctx, "buy milk"); err != nil {
		t.Fatalf("add: %v", err)
	}

	visible := vm.Visible()
	if len(visible) != 1 || visible[0].Title != "buy milk" {
		t.Fatalf("visible=%+v, want the created todo", visible)
	}
	if visible[0].Completed {
		t.Fatal("new todo should be active")
	}
}

func TestViewModel_EndToEndFlow(t *testing.T) {
	api := &fakeAPI{}
	vm := NewViewModel(api, nil, "u1")
	ctx := context.Background()

	if err := vm.Add(ctx, "buy milk"); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := vm.Visible()[0].ID

	if err := vm.SetCompleted(ctx, id, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := vm.SetFilter(FilterActive); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if got := vm.Visible(); len(got) != 0 {
		t.Fatalf("active view=%+v, want empty", got)
	}

	vm.SetFilter(FilterCompleted)
	if got := vm.Visible(); len(got) != 1 || got[0].ID != id {
		t.Fatalf("completed view=%+v, want the one todo", got)
	}

	if err := vm.ClearCompleted(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	vm.SetFilter(FilterAll)
	if got := vm.Visible(); len(got) != 0 {
		t.Fatalf("list after clear=%+v, want empty", got)
	}
}

func TestViewModel_FailedMutationLeavesListUntouched(t *testing.T) {
	api := &fakeAPI{}
	vm := NewViewModel(api, nil, "u1")
	ctx := context.Background()

	if err := vm.Add(ctx, "keep me"); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := vm.Visible()
	listCalls := api.listCalls()

	api.fail = errors.New("boom")
	if err := vm.Add(ctx, "never lands"); err == nil {
		t.Fatal("expected mutation failure")
	}

	after := vm.Visible()
	if len(after) != len(before) || after[0].Title != "keep me" {
		t.Fatalf("list changed after failed mutation: %+v", after)
	}
	if api.listCalls() != listCalls {
		t.Fatal("failed mutation must not trigger a refetch")
	}
}

func TestViewModel_SingleMutationInFlight(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{}), entered: make(chan struct{})}
	vm := NewViewModel(api, nil, "u1")
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- vm.Add(ctx, "slow one")
	}()

	// Wait until the first mutation is inside the server call, so the busy
	// flag is guaranteed to be held.
	select {
	case <-api.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first mutation never reached the server")
	}

	if err := vm.Add(ctx, "rejected"); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("err=%v, want ErrMutationInFlight", err)
	}

	close(api.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first mutation: %v", err)
	}
}

func TestViewModel_CacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(filepath.Join(dir, "todos.db"), time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	api := &fakeAPI{}
	vm := NewViewModel(api, cache, "u1")
	ctx := context.Background()

	if err := vm.Add(ctx, "cached"); err != nil {
		t.Fatalf("add: %v", err)
	}
	calls := api.listCalls()

	// A fresh view-model for the same user refreshes from the cache.
	vm2 := NewViewModel(api, cache, "u1")
	if err := vm2.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if api.listCalls() != calls {
		t.Fatal("refresh hit the server despite a fresh cache entry")
	}
	if got := vm2.Visible(); len(got) != 1 || got[0].Title != "cached" {
		t.Fatalf("visible=%+v, want cached todo", got)
	}

	// Another user's view-model misses the cache.
	vm3 := NewViewModel(api, cache, "u2")
	if err := vm3.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if api.listCalls() == calls {
		t.Fatal("another user's refresh must not reuse the cache entry")
	}
}

func TestViewModel_MutationInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(filepath.Join(dir, "todos.db"), time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	api := &fakeAPI{}
	vm := NewViewModel(api, cache, "u1")
	ctx := context.Background()

	if err := vm.Add(ctx, "first"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := vm.Add(ctx, "second"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// The cache must reflect server truth after the second mutation.
	todos, ok := cache.Get("u1")
	if !ok {
		t.Fatal("expected cache entry after mutation")
	}
	if len(todos) != 2 {
		t.Fatalf("cache holds %d todos, want 2", len(todos))
	}
}
