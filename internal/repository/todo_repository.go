package repository

import (
	"context"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// TodoRepository defines the storage operations behind the todo API.
// Each method maps onto exactly one store call. Errors are returned as the
// store driver produced them.
type TodoRepository interface {
	// List finds all todos matching the filter, in the requested order.
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Todo, error)

	// Create inserts the todo and sets its assigned ID.
	Create(ctx context.Context, todo *domain.Todo) error

	// FindByIDAndUpdate applies the patch and returns the updated todo,
	// or nil when no todo has the given ID.
	FindByIDAndUpdate(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error)

	// Delete removes the todo and reports whether exactly one was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
