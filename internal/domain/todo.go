package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPriority is assigned on create when no priority is given, and
// replaces any non-positive priority on update.
const DefaultPriority = 1

// ErrInvalidID is returned by a repository when an identifier cannot
// address a record in the active store (e.g. not an ObjectID or UUID).
var ErrInvalidID = errors.New("invalid todo ID")

type Todo struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
	Completed   bool      `gorm:"not null;index" json:"completed"`
	Priority    int       `gorm:"not null" json:"priority"`
}

// TodoPatch lists the fields an update-by-id sets. Nil fields are left as stored.
type TodoPatch struct {
	Description *string
	Priority    *int
	Completed   *bool
}

// IsEmpty reports whether the patch sets nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Description == nil && p.Priority == nil && p.Completed == nil
}

// SortField is one of the fields a todo list can be ordered by.
type SortField string

const (
	SortByDescription SortField = "description"
	SortByCreatedAt   SortField = "createdAt"
	SortByCompleted   SortField = "completed"
	SortByPriority    SortField = "priority"
)

var sortFields = []SortField{SortByDescription, SortByCreatedAt, SortByCompleted, SortByPriority}

// ParseSortField maps a field name onto a SortField. Unknown names are rejected.
func ParseSortField(name string) (SortField, error) {
	for _, f := range sortFields {
		if string(f) == name {
			return f, nil
		}
	}
	names := make([]string, len(sortFields))
	for i, f := range sortFields {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown sort field %q (expected one of: %s)", name, strings.Join(names, ", "))
}

type SortOrder string

const (
	Ascending  SortOrder = "ASC"
	Descending SortOrder = "DESC"
)

// ParseSortOrder accepts ASC or DESC in any case. An empty string means ASC.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToUpper(s) {
	case "", string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort order %q (expected ASC or DESC)", s)
}

type Sort struct {
	Field SortField
	Order SortOrder
}

// ListFilter narrows and orders a list call. A nil Completed means no filter,
// a nil Sort means store-native order.
type ListFilter struct {
	Completed *bool
	Sort      *Sort
}
