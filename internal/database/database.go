package database

import (
	"context"
	"time"
)

const healthTimeout = time.Second

// Service is the process-scoped store connection. It is opened once at
// startup and closed once at shutdown.
type Service interface {
	// Health reports store status for the health endpoint. "status" is
	// "up" or "down".
	Health(ctx context.Context) map[string]string

	// Migrate creates the tables or indexes the todo repository needs.
	Migrate(ctx context.Context) error

	Close(ctx context.Context) error
}
