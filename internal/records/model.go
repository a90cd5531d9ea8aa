package records

import (
	"time"

	"github.com/google/uuid"
)

// Record is a specimen under review.
type Record struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Status      Status `json:"status" yaml:"status"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Page is one page of records as reported by the store.
type Page struct {
	Records    []Record `json:"records"`
	TotalCount int      `json:"totalCount"`
}

// Patch is a partial update of a record. Nil fields are absent and left untouched.
type Patch struct {
	ID     string  `json:"id" validate:"required,max=64"`
	Status *Status `json:"status,omitempty" validate:"omitempty,status"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// NewPatch starts a patch for the record id.
func NewPatch(id string) Patch {
	return Patch{ID: id}
}

// WithStatus marks the status as present.
func (p Patch) WithStatus(s Status) Patch {
	p.Status = &s
	return p
}

// WithNote marks the note as present.
func (p Patch) WithNote(note string) Patch {
	p.Note = &note
	return p
}

// HasStatus reports whether the patch carries a status.
func (p Patch) HasStatus() bool { return p.Status != nil }

// HasNote reports whether the patch carries a note.
func (p Patch) HasNote() bool { return p.Note != nil }

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool { return p.Status == nil && p.Note == nil }

// Apply merges the present fields into r.
func (p Patch) Apply(r Record) Record {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Note != nil {
		r.Note = *p.Note
	}
	return r
}

// HistoryEntry is an immutable record of one status transition.
type HistoryEntry struct {
	ID             uuid.UUID `json:"id"`
	RecordID       string    `json:"recordId"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
	Note           string    `json:"note,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewHistoryEntry builds the entry for a transition, or returns false when the
// status did not change.
func NewHistoryEntry(recordID string, previous, next Status, note string, at time.Time) (HistoryEntry, bool) {
	if previous == next {
		return HistoryEntry{}, false
	}
	return HistoryEntry{
		ID:             uuid.New(),
		RecordID:       recordID,
		PreviousStatus: previous,
		NewStatus:      next,
		Note:           note,
		Timestamp:      at,
	}, true
}
