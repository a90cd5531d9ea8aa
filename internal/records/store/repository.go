// Package store serves the canonical specimen records over HTTP.
package store

import (
	"context"
	"fmt"
	"math"

	"github.com/reviewdesk/reviewdesk/internal/platform/httpx"
	"github.com/reviewdesk/reviewdesk/internal/records"
)

var (
	// ErrNotFound indicates the record id is unknown.
	ErrNotFound = fmt.Errorf("record %w", httpx.ErrNotFound)
	// ErrValidation indicates a rejected patch or query.
	ErrValidation = httpx.ErrValidation
)

// NotFoundError names the missing record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Record with id %s not found.", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(id string) error {
	return &NotFoundError{ID: id}
}

// Change is the outcome of an applied patch.
type Change struct {
	Previous records.Record
	Current  records.Record
}

// StatusChanged reports whether the patch moved the record to another status.
func (c Change) StatusChanged() bool {
	return c.Previous.Status != c.Current.Status
}

// Repository persists records in listing order.
type Repository interface {
	List(ctx context.Context, page, limit int) ([]records.Record, int, error)
	Get(ctx context.Context, id string) (records.Record, error)
	Update(ctx context.Context, patch records.Patch) (Change, error)
}

// offset is the number of rows before page. Pages too large to address
// saturate at math.MaxInt so they list as empty instead of wrapping around.
func offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
