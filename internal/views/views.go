// Package views computes derived, read-only views over a session snapshot.
package views

import (
	"fmt"
	"sort"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

const (
	// EmptyFilterMessage is shown when the filter hides every loaded record.
	EmptyFilterMessage = "No records match the current filter."
	// EmptyHistoryMessage is shown before any transition was recorded.
	EmptyHistoryMessage = "No status changes yet. Updates will appear here."
)

// Filter selects records by status. FilterAll keeps everything.
type Filter string

// FilterAll disables status filtering.
const FilterAll Filter = "all"

// ParseFilter accepts "all" or any vocabulary status.
func ParseFilter(raw string) (Filter, error) {
	if raw == "" || raw == string(FilterAll) {
		return FilterAll, nil
	}
	status, err := records.ParseStatus(raw)
	if err != nil {
		return "", fmt.Errorf("views: invalid filter %q", raw)
	}
	return Filter(status), nil
}

// CountsByStatus counts loaded records per status. Every status is present.
func CountsByStatus(recs []records.Record) map[records.Status]int {
	counts := make(map[records.Status]int, len(records.Statuses()))
	for _, s := range records.Statuses() {
		counts[s] = 0
	}
	for _, r := range recs {
		counts[r.Status]++
	}
	return counts
}

// Filtered returns the records matching filter in their original order.
// FilterAll returns recs itself.
func Filtered(recs []records.Record, filter Filter) []records.Record {
	if filter == FilterAll || filter == "" {
		return recs
	}
	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		if r.Status == records.Status(filter) {
			out = append(out, r)
		}
	}
	return out
}

// OrderedHistory returns a copy of log sorted most recent first.
func OrderedHistory(log []records.HistoryEntry) []records.HistoryEntry {
	ordered := append([]records.HistoryEntry(nil), log...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})
	return ordered
}
