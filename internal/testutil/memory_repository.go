// Package testutil provides test doubles shared across package tests.
package testutil

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// MemoryTodoRepository is an in-process TodoRepository for tests. It keeps
// insertion order as its native order and uses UUID identifiers.
type MemoryTodoRepository struct {
	mu    sync.Mutex
	todos []domain.Todo

	// Err, when set, is returned by every call.
	Err error
}

var _ repository.TodoRepository = (*MemoryTodoRepository)(nil)

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{}
}

func (r *MemoryTodoRepository) List(_ context.Context, filter domain.ListFilter) ([]domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := []domain.Todo{}
	for _, todo := range r.todos {
		if filter.Completed != nil && todo.Completed != *filter.Completed {
			continue
		}
		out = append(out, todo)
	}
	if filter.Sort != nil {
		slices.SortStableFunc(out, func(a, b domain.Todo) int {
			c := compareField(a, b, filter.Sort.Field)
			if filter.Sort.Order == domain.Descending {
				return -c
			}
			return c
		})
	}
	return out, nil
}

func compareField(a, b domain.Todo, field domain.SortField) int {
	switch field {
	case domain.SortByDescription:
		return strings.Compare(a.Description, b.Description)
	case domain.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case domain.SortByCompleted:
		return cmp.Compare(boolRank(a.Completed), boolRank(b.Completed))
	case domain.SortByPriority:
		return cmp.Compare(a.Priority, b.Priority)
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *MemoryTodoRepository) Create(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	todo.ID = uuid.New().String()
	r.todos = append(r.todos, *todo)
	return nil
}

func (r *MemoryTodoRepository) FindByIDAndUpdate(_ context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}
	for i := range r.todos {
		if r.todos[i].ID != id {
			continue
		}
		if patch.Description != nil {
			r.todos[i].Description = *patch.Description
		}
		if patch.Priority != nil {
			r.todos[i].Priority = *patch.Priority
		}
		if patch.Completed != nil {
			r.todos[i].Completed = *patch.Completed
		}
		todo := r.todos[i]
		return &todo, nil
	}
	return nil, nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, domain.ErrInvalidID
	}
	for i := range r.todos {
		if r.todos[i].ID == id {
			r.todos = slices.Delete(r.todos, i, i+1)
			return true, nil
		}
	}
	return false, nil
}
