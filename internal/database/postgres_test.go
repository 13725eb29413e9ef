package database

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

func TestGormLoggerWritesAtWarn(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	newGormLogger(log).Warn(context.Background(), "slow query %s", "SELECT 1")

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=WARN"), out)
	assert.Contains(t, out, "slow query SELECT 1")
}

func TestPostgresService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("todo_test"),
		postgres.WithUsername("todo"),
		postgres.WithPassword("todo"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	svc, err := NewPostgres(dsn, "todo_test", slog.Default())
	require.NoError(t, err)

	health := svc.Health(ctx)
	assert.Equal(t, "up", health["status"])
	assert.Contains(t, health, "open_connections")
	assert.Equal(t, "It's healthy", health["message"])
	assert.Equal(t, "todo_test", health["database"])

	require.NoError(t, svc.Migrate(ctx))
	assert.True(t, svc.DB().Migrator().HasTable(&domain.Todo{}))

	require.NoError(t, svc.Close(ctx))
	assert.Equal(t, "down", svc.Health(ctx)["status"])
}
