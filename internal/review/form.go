// Package review holds the editable draft behind the record detail dialog.
package review

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

// NoteRequiredMessage is the validation text shown when a justification is missing.
const NoteRequiredMessage = "A note is required when flagging or requesting revision."

var (
	// ErrNoteRequired is returned by Save when the draft fails validation.
	ErrNoteRequired = errors.New(NoteRequiredMessage)
	// ErrSaveInProgress is returned by Save while a previous save is pending.
	ErrSaveInProgress = errors.New("review: save already in progress")
)

// Updater persists a patch. session.State satisfies it.
type Updater interface {
	Update(ctx context.Context, patch records.Patch) error
}

// Phase is the lifecycle position of a form.
type Phase int

const (
	Editing Phase = iota
	Saving
	Closed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Form is the draft status and note for one record.
type Form struct {
	updater Updater

	mu     sync.Mutex
	target records.Record
	status records.Status
	note   string
	phase  Phase
	err    string
}

// NewForm opens a draft initialised from rec.
func NewForm(updater Updater, rec records.Record) *Form {
	f := &Form{updater: updater}
	f.reset(rec)
	return f
}

// Sync re-initialises the draft when the record's identity, status or note
// changed underneath it. It reports whether a reset happened.
func (f *Form) Sync(rec records.Record) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == f.target.ID && rec.Status == f.target.Status && rec.Note == f.target.Note {
		return false
	}
	f.reset(rec)
	return true
}

func (f *Form) reset(rec records.Record) {
	f.target = rec
	f.status = rec.Status
	f.note = rec.Note
	f.err = ""
	if f.phase != Saving {
		f.phase = Editing
	}
}

// Record returns the record the draft edits.
func (f *Form) Record() records.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// SetStatus changes the draft status.
func (f *Form) SetStatus(s records.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
	f.err = ""
}

// SetNote changes the draft note.
func (f *Form) SetNote(note string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.note = note
	f.err = ""
}

// Status returns the draft status.
func (f *Form) Status() records.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Note returns the draft note.
func (f *Form) Note() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.note
}

// Phase returns the lifecycle position.
func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Saving reports whether a save is pending.
func (f *Form) Saving() bool {
	return f.Phase() == Saving
}

// Error returns the last save error text, or "".
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// ValidationMessage returns NoteRequiredMessage for an invalid draft and "" otherwise.
func (f *Form) ValidationMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validate(f.status, f.note)
}

// CanSave reports whether the save action should be enabled.
func (f *Form) CanSave() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase != Saving && validate(f.status, f.note) == ""
}

// Save validates the draft and, when valid, persists status and note through
// the updater. Validation failures never reach the updater.
func (f *Form) Save(ctx context.Context) error {
	f.mu.Lock()
	if f.phase == Saving {
		f.mu.Unlock()
		return ErrSaveInProgress
	}
	if msg := validate(f.status, f.note); msg != "" {
		f.err = msg
		f.mu.Unlock()
		return ErrNoteRequired
	}
	patch := records.NewPatch(f.target.ID).WithStatus(f.status).WithNote(f.note)
	f.phase = Saving
	f.err = ""
	f.mu.Unlock()

	err := f.updater.Update(ctx, patch)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = Editing
		f.err = err.Error()
		return err
	}
	f.phase = Closed
	return nil
}

func validate(status records.Status, note string) string {
	if records.RequiresNote(status) && strings.TrimSpace(note) == "" {
		return NoteRequiredMessage
	}
	return ""
}
