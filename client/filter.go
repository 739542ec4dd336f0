package client

import "github.com/taskdeck/backend/domain"

// Filter selects a view over the fetched todo list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Apply returns the todos visible under the filter. It is a pure function of
// its input: the active and completed views partition the full list.
func (f Filter) Apply(list []domain.Todo) []domain.Todo {
	if f == FilterAll {
		return append([]domain.Todo(nil), list...)
	}

	out := make([]domain.Todo, 0, len(list))
	for _, todo := range list {
		if todo.Completed == (f == FilterCompleted) {
			out = append(out, todo)
		}
	}
	return out
}

// Counts holds the two derived counters shown next to the filter switcher.
type Counts struct {
	Active    int
	Completed int
}

// CountTodos tallies active and completed todos in one pass.
func CountTodos(list []domain.Todo) Counts {
	var counts Counts
	for _, todo := range list {
		if todo.Completed {
			counts.Completed++
		} else {
			counts.Active++
		}
	}
	return counts
}
