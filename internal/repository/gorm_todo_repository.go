package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

var sortColumns = map[domain.SortField]string{
	domain.SortByDescription: "description",
	domain.SortByCreatedAt:   "created_at",
	domain.SortByCompleted:   "completed",
	domain.SortByPriority:    "priority",
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Todo, error) {
	q := r.db.WithContext(ctx).Model(&domain.Todo{})
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Sort != nil {
		col, ok := sortColumns[filter.Sort.Field]
		if !ok {
			return nil, errors.New("no column for sort field " + string(filter.Sort.Field))
		}
		q = q.Order(clause.OrderByColumn{
			Column: clause.Column{Name: col},
			Desc:   filter.Sort.Order == domain.Descending,
		})
	}

	todos := []domain.Todo{}
	if err := q.Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *gormTodoRepository) FindByIDAndUpdate(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}

	fields := map[string]interface{}{}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}

	var todo domain.Todo
	if len(fields) == 0 {
		err := r.db.WithContext(ctx).Where("id = ?", id).Take(&todo).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &todo, nil
	}

	// RETURNING fills todo with the row as stored after the update.
	result := r.db.WithContext(ctx).
		Model(&todo).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &todo, nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, domain.ErrInvalidID
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Todo{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
