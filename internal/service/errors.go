package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/logger"
	"github.com/Tomlord1122/todo-api/internal/repository"
)

// Kind classifies a failed operation for the API boundary.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindUnavailable Kind = "storage_unavailable"
	KindUnknown     Kind = "unknown"
)

// Validation errors
var (
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidSort         = errors.New("invalid sort")
)

// ErrTodoNotFound is used by surfaces that report a missing todo as an error
// rather than an empty result.
var ErrTodoNotFound = errors.New("todo not found")

// Error is returned by every TodoService operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func validationError(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// storageError wraps a repository failure, choosing the kind from the error
// value itself.
func storageError(op string, err error) *Error {
	kind := KindUnknown
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		kind = KindValidation
	case repository.IsUnavailable(err):
		kind = KindUnavailable
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// logStorageError classifies a repository failure and logs it. Rejected input
// is a client mistake and only logged at debug level.
func logStorageError(ctx context.Context, op, msg string, err error, args ...any) *Error {
	serr := storageError(op, err)
	args = append(args, "error", err)
	log := logger.FromContext(ctx)
	if serr.Kind == KindValidation {
		log.Debug(msg, args...)
	} else {
		log.Error(msg, args...)
	}
	return serr
}
