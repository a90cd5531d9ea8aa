// Package session owns the reviewer's loaded page of records, the pagination
// cursor and the change log. Every mutation goes through State.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

const (
	// DefaultPage is the cursor a new session starts on.
	DefaultPage = 1
	// DefaultLimit is the page size a new session requests.
	DefaultLimit = 6
	// DefaultRequestTimeout bounds each call to the record store.
	DefaultRequestTimeout = 10 * time.Second
)

// ErrUpdateInFlight is returned when a record already has an update pending.
var ErrUpdateInFlight = errors.New("session: update already in flight for record")

// RecordStore is the remote collaborator holding the canonical records.
type RecordStore interface {
	List(ctx context.Context, page, limit int) (records.Page, error)
	Update(ctx context.Context, patch records.Patch) (records.Record, error)
}

// Snapshot is an immutable view of the session at one version.
type Snapshot struct {
	Records    []records.Record
	TotalCount int
	Page       int
	Limit      int
	Loading    bool
	Err        string
	History    []records.HistoryEntry
	Version    uint64
}

// Option customises a State.
type Option func(*State)

// WithLimit sets the page size.
func WithLimit(limit int) Option {
	return func(s *State) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithPage sets the initial cursor.
func WithPage(page int) Option {
	return func(s *State) {
		if page > 0 {
			s.page = page
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRequestTimeout bounds each store call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// State is the single mutable owner of the session's records and log.
type State struct {
	store   RecordStore
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration

	mu         sync.Mutex
	records    []records.Record
	totalCount int
	page       int
	limit      int
	loading    bool
	err        string
	log        []records.HistoryEntry
	lastStamp  time.Time
	generation uint64
	version    uint64
	inflight   map[string]struct{}
}

// New constructs a session bound to store. Nothing is loaded until Load is called.
func New(store RecordStore, opts ...Option) *State {
	s := &State{
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
		timeout:  DefaultRequestTimeout,
		page:     DefaultPage,
		limit:    DefaultLimit,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Records:    append([]records.Record(nil), s.records...),
		TotalCount: s.totalCount,
		Page:       s.page,
		Limit:      s.limit,
		Loading:    s.loading,
		Err:        s.err,
		History:    append([]records.HistoryEntry(nil), s.log...),
		Version:    s.version,
	}
}

// Record looks up a loaded record by id.
func (s *State) Record(id string) (records.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return records.Record{}, false
	}
	return s.records[idx], true
}

// Load fetches the current page. Failures are recorded in the snapshot's Err
// and never returned; the previously loaded records stay in place.
func (s *State) Load(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	page, limit := s.page, s.limit
	s.loading = true
	s.err = ""
	s.touch()
	s.mu.Unlock()

	callCtx, cancel := s.withTimeout(ctx)
	result, err := s.store.List(callCtx, page, limit)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding stale page", slog.Int("page", page), slog.Uint64("generation", gen))
		return
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		s.logger.Warn("load records", slog.Int("page", page), slog.Any("error", err))
	} else {
		s.records = append([]records.Record(nil), result.Records...)
		s.totalCount = result.TotalCount
	}
	s.touch()
}

// SetPage moves the cursor and loads that page. Pages below 1 are ignored;
// callers clamp the upper bound against the pagination metadata.
func (s *State) SetPage(ctx context.Context, page int) {
	if page < 1 {
		return
	}
	s.mu.Lock()
	s.page = page
	s.touch()
	s.mu.Unlock()
	s.Load(ctx)
}

// Refresh reloads the current page.
func (s *State) Refresh(ctx context.Context) {
	s.Load(ctx)
}

// Update sends patch to the store. On success the returned record replaces the
// local copy and, when its status differs from the local status captured
// before the call, a history entry carrying the patch note is appended. Failures leave the
// records untouched, set the error text and are returned.
func (s *State) Update(ctx context.Context, patch records.Patch) error {
	s.mu.Lock()
	if _, busy := s.inflight[patch.ID]; busy {
		s.err = ErrUpdateInFlight.Error()
		s.touch()
		s.mu.Unlock()
		return ErrUpdateInFlight
	}
	s.inflight[patch.ID] = struct{}{}
	s.err = ""
	previous, loaded := records.Status(""), false
	if idx := s.indexOf(patch.ID); idx >= 0 {
		previous, loaded = s.records[idx].Status, true
	}
	s.touch()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, patch.ID)
		s.mu.Unlock()
	}()

	callCtx, cancel := s.withTimeout(ctx)
	updated, err := s.store.Update(callCtx, patch)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err.Error()
		s.touch()
		s.logger.Warn("update record", slog.String("id", patch.ID), slog.Any("error", err))
		return err
	}

	if idx := s.indexOf(updated.ID); idx >= 0 {
		s.records[idx] = updated
	}
	if loaded {
		note := ""
		if patch.Note != nil {
			note = *patch.Note
		}
		if entry, ok := records.NewHistoryEntry(updated.ID, previous, updated.Status, note, s.stamp()); ok {
			s.log = append(s.log, entry)
			s.logger.Debug("status transition",
				slog.String("id", updated.ID),
				slog.String("from", string(previous)),
				slog.String("to", string(updated.Status)))
		}
	}
	s.touch()
	return nil
}

// ClearLog empties the change log.
func (s *State) ClearLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.log) == 0 {
		return
	}
	s.log = nil
	s.touch()
}

func (s *State) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// stamp returns the completion time, never earlier than the previous entry.
func (s *State) stamp() time.Time {
	at := s.now().UTC()
	if at.Before(s.lastStamp) {
		at = s.lastStamp
	}
	s.lastStamp = at
	return at
}

func (s *State) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) touch() {
	s.version++
}
