package store

import (
	"context"
	"sync"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []records.Record
}

// NewMemoryRepository seeds a repository with recs in listing order.
func NewMemoryRepository(recs []records.Record) *MemoryRepository {
	return &MemoryRepository{records: append([]records.Record(nil), recs...)}
}

func (r *MemoryRepository) List(ctx context.Context, page, limit int) ([]records.Record, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.records)
	start := offset(page, limit)
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return append([]records.Record{}, r.records[start:end]...), total, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return records.Record{}, notFound(id)
}

func (r *MemoryRepository) Update(ctx context.Context, patch records.Patch) (Change, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID != patch.ID {
			continue
		}
		previous := r.records[i]
		r.records[i] = patch.Apply(previous)
		return Change{Previous: previous, Current: r.records[i]}, nil
	}
	return Change{}, notFound(patch.ID)
}
