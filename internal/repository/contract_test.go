package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// runRepositoryContract exercises behaviour every TodoRepository must share.
// missingID must be well formed for the store but address no record.
func runRepositoryContract(t *testing.T, repo TodoRepository, missingID string, reset func(t *testing.T)) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T) []domain.Todo {
		t.Helper()
		reset(t)
		todos := []domain.Todo{
			{Description: "buy milk", CreatedAt: base, Completed: false, Priority: 2},
			{Description: "answer mail", CreatedAt: base.Add(time.Hour), Completed: true, Priority: 3},
			{Description: "call home", CreatedAt: base.Add(2 * time.Hour), Completed: false, Priority: 1},
		}
		for i := range todos {
			require.NoError(t, repo.Create(ctx, &todos[i]))
			require.NotEmpty(t, todos[i].ID)
		}
		return todos
	}

	t.Run("create assigns unique ids", func(t *testing.T) {
		todos := seed(t)
		seen := map[string]bool{}
		for _, todo := range todos {
			assert.False(t, seen[todo.ID], "duplicate id %s", todo.ID)
			seen[todo.ID] = true
		}
	})

	t.Run("list without filter returns everything", func(t *testing.T) {
		seed(t)
		got, err := repo.List(ctx, domain.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("list filters on completed", func(t *testing.T) {
		seed(t)
		done, err := repo.List(ctx, domain.ListFilter{Completed: ptr(true)})
		require.NoError(t, err)
		require.Len(t, done, 1)
		assert.Equal(t, "answer mail", done[0].Description)

		open, err := repo.List(ctx, domain.ListFilter{Completed: ptr(false)})
		require.NoError(t, err)
		assert.Len(t, open, 2)
	})

	t.Run("list sorts", func(t *testing.T) {
		seed(t)
		got, err := repo.List(ctx, domain.ListFilter{Sort: &domain.Sort{Field: domain.SortByPriority, Order: domain.Descending}})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []int{3, 2, 1}, []int{got[0].Priority, got[1].Priority, got[2].Priority})

		got, err = repo.List(ctx, domain.ListFilter{Sort: &domain.Sort{Field: domain.SortByDescription, Order: domain.Ascending}})
		require.NoError(t, err)
		assert.Equal(t, "answer mail", got[0].Description)
		assert.Equal(t, "call home", got[2].Description)
	})

	t.Run("update returns the stored record", func(t *testing.T) {
		todos := seed(t)
		updated, err := repo.FindByIDAndUpdate(ctx, todos[0].ID, domain.TodoPatch{
			Description: ptr("buy oat milk"),
			Priority:    ptr(5),
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, todos[0].ID, updated.ID)
		assert.Equal(t, "buy oat milk", updated.Description)
		assert.Equal(t, 5, updated.Priority)
		assert.False(t, updated.Completed)
		assert.True(t, base.Equal(updated.CreatedAt))
	})

	t.Run("complete sets completed and keeps other fields", func(t *testing.T) {
		todos := seed(t)
		completed, err := repo.FindByIDAndUpdate(ctx, todos[2].ID, domain.TodoPatch{Completed: ptr(true)})
		require.NoError(t, err)
		require.NotNil(t, completed)
		assert.Equal(t, todos[2].ID, completed.ID)
		assert.True(t, completed.Completed)
		assert.Equal(t, "call home", completed.Description)
		assert.Equal(t, 1, completed.Priority)
		assert.True(t, todos[2].CreatedAt.Equal(completed.CreatedAt))

		done, err := repo.List(ctx, domain.ListFilter{Completed: ptr(true)})
		require.NoError(t, err)
		assert.Len(t, done, 2)
	})

	t.Run("update of a missing id returns nil", func(t *testing.T) {
		seed(t)
		updated, err := repo.FindByIDAndUpdate(ctx, missingID, domain.TodoPatch{Completed: ptr(true)})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("malformed id is rejected", func(t *testing.T) {
		_, err := repo.FindByIDAndUpdate(ctx, "not-an-id", domain.TodoPatch{Completed: ptr(true)})
		assert.ErrorIs(t, err, domain.ErrInvalidID)

		_, err = repo.Delete(ctx, "not-an-id")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("delete removes exactly one record", func(t *testing.T) {
		todos := seed(t)
		removed, err := repo.Delete(ctx, todos[1].ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, todos[1].ID)
		require.NoError(t, err)
		assert.False(t, removed)

		got, err := repo.List(ctx, domain.ListFilter{})
		require.NoError(t, err)
		for _, todo := range got {
			assert.NotEqual(t, todos[1].ID, todo.ID)
		}
	})
}
