package views

import (
	"sync"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

// Derived bundles the views the review screen renders together.
type Derived struct {
	Counts  map[records.Status]int
	Visible []records.Record
	History []records.HistoryEntry
}

// Cache memoises Derived for one snapshot version and filter.
type Cache struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	filter  Filter
	value   Derived
}

// Derive returns the cached views when version and filter match the last call,
// and recomputes them otherwise.
func (c *Cache) Derive(version uint64, recs []records.Record, log []records.HistoryEntry, filter Filter) Derived {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.version == version && c.filter == filter {
		return c.value
	}
	c.value = Derived{
		Counts:  CountsByStatus(recs),
		Visible: Filtered(recs, filter),
		History: OrderedHistory(log),
	}
	c.version = version
	c.filter = filter
	c.valid = true
	return c.value
}
