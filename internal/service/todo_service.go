package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// ListTodosRequest holds the optional list arguments. An empty SortBy keeps
// store-native order; a nil Completed applies no filter.
type ListTodosRequest struct {
	SortBy    string
	Order     string
	Completed *bool
}

// CreateTodoRequest holds the data needed to create a new todo.
// Nil optional fields take their defaults.
type CreateTodoRequest struct {
	Description *string
	CreatedAt   *time.Time
	Completed   *bool
	Priority    *int
}

// UpdateTodoRequest holds the data for updating an existing todo.
type UpdateTodoRequest struct {
	Description *string
	Priority    *int
}

// TodoService defines the operations for managing todos.
type TodoService interface {
	ListTodos(ctx context.Context, req ListTodosRequest) ([]domain.Todo, error)

	CreateTodo(ctx context.Context, req CreateTodoRequest) (*domain.Todo, error)

	// UpdateTodo returns nil, nil when no todo has the given ID.
	UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) (*domain.Todo, error)

	// CompleteTodo marks the todo done. It returns nil, nil when no todo has the given ID.
	CompleteTodo(ctx context.Context, id string) (*domain.Todo, error)

	// DeleteTodo reports whether a todo was removed.
	DeleteTodo(ctx context.Context, id string) (bool, error)
}

// todoService implements the TodoService interface.
type todoService struct {
	repo repository.TodoRepository
	now  func() time.Time
}

// NewTodoService creates a new instance of todoService.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *todoService) ListTodos(ctx context.Context, req ListTodosRequest) ([]domain.Todo, error) {
	const op = "list todos"

	filter := domain.ListFilter{Completed: req.Completed}
	if req.SortBy != "" {
		field, err := domain.ParseSortField(req.SortBy)
		if err != nil {
			return nil, validationError(op, fmt.Errorf("%w: %v", ErrInvalidSort, err))
		}
		order, err := domain.ParseSortOrder(req.Order)
		if err != nil {
			return nil, validationError(op, fmt.Errorf("%w: %v", ErrInvalidSort, err))
		}
		filter.Sort = &domain.Sort{Field: field, Order: order}
	}

	todos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, logStorageError(ctx, op, "Error listing todos from repository", err)
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

func (s *todoService) CreateTodo(ctx context.Context, req CreateTodoRequest) (*domain.Todo, error) {
	const op = "create todo"

	if req.Description == nil {
		return nil, validationError(op, ErrDescriptionRequired)
	}

	todo := &domain.Todo{
		Description: *req.Description,
		CreatedAt:   s.now(),
		Completed:   false,
		Priority:    domain.DefaultPriority,
	}
	if req.CreatedAt != nil {
		todo.CreatedAt = *req.CreatedAt
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	// Mongo stores dates with millisecond precision. Truncate so the returned
	// record matches a later read on either store.
	todo.CreatedAt = todo.CreatedAt.UTC().Truncate(time.Millisecond)

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, logStorageError(ctx, op, "Error creating todo in repository", err)
	}
	return todo, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) (*domain.Todo, error) {
	const op = "update todo"

	if req.Description == nil {
		return nil, validationError(op, ErrDescriptionRequired)
	}

	patch := domain.TodoPatch{Description: req.Description}
	if req.Priority != nil {
		priority := *req.Priority
		if priority <= 0 {
			priority = domain.DefaultPriority
		}
		patch.Priority = &priority
	}

	todo, err := s.repo.FindByIDAndUpdate(ctx, id, patch)
	if err != nil {
		return nil, logStorageError(ctx, op, "Error updating todo in repository", err, "id", id)
	}
	return todo, nil
}

func (s *todoService) CompleteTodo(ctx context.Context, id string) (*domain.Todo, error) {
	const op = "complete todo"

	completed := true
	todo, err := s.repo.FindByIDAndUpdate(ctx, id, domain.TodoPatch{Completed: &completed})
	if err != nil {
		return nil, logStorageError(ctx, op, "Error completing todo in repository", err, "id", id)
	}
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id string) (bool, error) {
	const op = "delete todo"

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, logStorageError(ctx, op, "Error deleting todo from repository", err, "id", id)
	}
	return removed, nil
}
