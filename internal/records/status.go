// Package records defines the specimen record model shared by the review
// session, the review form and the record store.
package records

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the review state of a record.
type Status string

const (
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusFlagged       Status = "flagged"
	StatusNeedsRevision Status = "needs_revision"
)

var (
	allStatuses    = []Status{StatusPending, StatusApproved, StatusFlagged, StatusNeedsRevision}
	reviewStatuses = []Status{StatusApproved, StatusFlagged, StatusNeedsRevision}
	titleCaser     = cases.Title(language.English)
)

// StatusOneOf lists the vocabulary in validator "oneof" form.
var StatusOneOf = strings.Join(statusStrings(), " ")

// Statuses returns every status in canonical order.
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ReviewStatuses returns the statuses a reviewer may pick when editing a record.
func ReviewStatuses() []Status {
	return append([]Status(nil), reviewStatuses...)
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("records: unknown status %q", raw)
	}
	return s, nil
}

// Valid reports whether s belongs to the vocabulary.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// RequiresNote reports whether moving a record into s needs a justification.
func (s Status) RequiresNote() bool {
	return s == StatusFlagged || s == StatusNeedsRevision
}

// RequiresNote is the function form of Status.RequiresNote.
func RequiresNote(s Status) bool {
	return s.RequiresNote()
}

// Label renders the status for display, e.g. "Needs Revision".
func (s Status) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

func (s Status) String() string {
	return string(s)
}

func statusStrings() []string {
	out := make([]string, 0, len(allStatuses))
	for _, s := range allStatuses {
		out = append(out, string(s))
	}
	return out
}
