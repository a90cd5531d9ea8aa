package e2e

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reviewdesk/reviewdesk/internal/app"
	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/records/client"
	"github.com/reviewdesk/reviewdesk/internal/records/store"
	"github.com/reviewdesk/reviewdesk/internal/review"
	"github.com/reviewdesk/reviewdesk/internal/session"
	_ "github.com/reviewdesk/reviewdesk/internal/testing/guard"
	"github.com/reviewdesk/reviewdesk/internal/views"
)

type harness struct {
	repo  *store.MemoryRepository
	state *session.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := store.NewMemoryRepository([]records.Record{
		{ID: "1", Name: "Specimen A", Description: "Pending specimen", Status: records.StatusPending},
		{ID: "2", Name: "Specimen B", Description: "Approved specimen", Status: records.StatusApproved},
	})
	cfg := &app.Config{RateLimitPerMinute: 1000, AppRequestTimeout: 5 * time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		RecordHandler: store.NewHandler(logger, store.NewService(repo, store.WithMetrics(metrics), store.WithLogger(logger))),
		Metrics:       metrics,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	state := session.New(client.New(srv.URL))
	state.Load(context.Background())
	require.Empty(t, state.Snapshot().Err)
	return &harness{repo: repo, state: state}
}

func (h *harness) review(t *testing.T, id string, status records.Status, note string) *review.Form {
	t.Helper()
	rec, ok := h.state.Record(id)
	require.True(t, ok)
	form := review.NewForm(h.state, rec)
	form.SetStatus(status)
	form.SetNote(note)
	return form
}

func TestTestModeGuard(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
}

func TestApproveUpdatesCountsAndHistory(t *testing.T) {
	h := newHarness(t)

	form := h.review(t, "1", records.StatusApproved, "Reviewed and approved.")
	require.NoError(t, form.Save(context.Background()))
	require.Equal(t, review.Closed, form.Phase())

	snap := h.state.Snapshot()
	counts := views.CountsByStatus(snap.Records)
	require.Equal(t, 2, counts[records.StatusApproved])
	require.Equal(t, 0, counts[records.StatusPending])

	require.Len(t, snap.History, 1)
	entry := snap.History[0]
	require.Equal(t, "1", entry.RecordID)
	require.Equal(t, records.StatusPending, entry.PreviousStatus)
	require.Equal(t, records.StatusApproved, entry.NewStatus)
	require.Equal(t, "Reviewed and approved.", entry.Note)

	stored, err := h.repo.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, records.StatusApproved, stored.Status)
	require.Equal(t, "Reviewed and approved.", stored.Note)
}

func TestFilteredViewEmptiesAfterApprovingSolePending(t *testing.T) {
	h := newHarness(t)
	var cache views.Cache

	snap := h.state.Snapshot()
	derived := cache.Derive(snap.Version, snap.Records, snap.History, views.Filter(records.StatusPending))
	require.Len(t, derived.Visible, 1)

	form := h.review(t, derived.Visible[0].ID, records.StatusApproved, "Reviewed and approved.")
	require.NoError(t, form.Save(context.Background()))

	snap = h.state.Snapshot()
	derived = cache.Derive(snap.Version, snap.Records, snap.History, views.Filter(records.StatusPending))
	require.Empty(t, derived.Visible)
	require.Equal(t, "No records match the current filter.", views.EmptyFilterMessage)
	require.Equal(t, 2, derived.Counts[records.StatusApproved])
	require.Equal(t, 0, derived.Counts[records.StatusPending])
}

func TestNotFoundLeavesRecordsUntouched(t *testing.T) {
	h := newHarness(t)
	before := h.state.Snapshot().Records

	err := h.state.Update(context.Background(), records.NewPatch("42").WithStatus(records.StatusApproved))
	require.ErrorIs(t, err, client.ErrNotFound)
	require.Contains(t, err.Error(), "Not Found")

	snap := h.state.Snapshot()
	require.Equal(t, before, snap.Records)
	require.Empty(t, snap.History)
	require.Equal(t, err.Error(), snap.Err)
}

func TestValidationNeverReachesStore(t *testing.T) {
	h := newHarness(t)

	form := h.review(t, "1", records.StatusFlagged, "  ")
	require.ErrorIs(t, form.Save(context.Background()), review.ErrNoteRequired)
	require.Equal(t, review.NoteRequiredMessage, form.Error())

	stored, err := h.repo.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, records.StatusPending, stored.Status)
}
