package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("find: %w", context.DeadlineExceeded), want: true},
		{name: "bad conn", err: driver.ErrBadConn, want: true},
		{name: "client disconnected", err: mongo.ErrClientDisconnected, want: true},
		{name: "net error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, want: true},
		{name: "invalid id", err: domain.ErrInvalidID, want: false},
		{name: "plain error", err: errors.New("duplicate key"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnavailable(tt.err))
		})
	}
}
