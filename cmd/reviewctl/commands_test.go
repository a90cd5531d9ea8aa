package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/records/store"
)

func newStoreServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	repo := store.NewMemoryRepository([]records.Record{
		{ID: "1", Name: "Specimen A", Description: "first", Status: records.StatusPending},
		{ID: "2", Name: "Specimen B", Description: "second", Status: records.StatusApproved},
		{ID: "3", Name: "Specimen C", Description: "third", Status: records.StatusFlagged, Note: "cracked"},
	})
	store.NewHandler(nil, store.NewService(repo)).MountRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListPrintsSummaryAndPagination(t *testing.T) {
	srv := newStoreServer(t)

	out, err := run(t, "list", "--api-url", srv.URL, "--limit", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Pending: 1  Approved: 1  Flagged: 0  Needs Revision: 0")
	require.Contains(t, out, "Specimen A")
	require.Contains(t, out, "Page 1 of 2")

	out, err = run(t, "list", "--api-url", srv.URL, "--limit", "2", "--filter", "needs_revision")
	require.NoError(t, err)
	require.Contains(t, out, "No records match the current filter.")
}

func TestListClampsPageToLastPage(t *testing.T) {
	srv := newStoreServer(t)

	out, err := run(t, "list", "--api-url", srv.URL, "--limit", "2", "--page", "9")
	require.NoError(t, err)
	require.Contains(t, out, "Page 2 of 2")
	require.Contains(t, out, "Specimen C")

	out, err = run(t, "list", "--api-url", srv.URL, "--limit", "2", "--page=-3")
	require.NoError(t, err)
	require.Contains(t, out, "Page 1 of 2")
	require.Contains(t, out, "Specimen A")
}

func TestReviewSearchesPagesAndPrintsHistory(t *testing.T) {
	srv := newStoreServer(t)

	out, err := run(t, "review", "3", "--api-url", srv.URL, "--limit", "2", "--status", "approved", "--note", "Reviewed and approved.")
	require.NoError(t, err)
	require.Contains(t, out, "Saved 3 (Specimen C): Approved")
	require.Contains(t, out, "#3  Flagged -> Approved  Reviewed and approved.")

	out, err = run(t, "list", "--api-url", srv.URL, "--page", "2", "--limit", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Approved")
	require.Contains(t, out, "Reviewed and approved.")
}

func TestReviewRequiresNoteForFlag(t *testing.T) {
	srv := newStoreServer(t)

	_, err := run(t, "review", "1", "--api-url", srv.URL, "--status", "flagged", "--note", " ")
	require.EqualError(t, err, "A note is required when flagging or requesting revision.")
}

func TestReviewRejectsPendingAndUnknownRecords(t *testing.T) {
	srv := newStoreServer(t)

	_, err := run(t, "review", "1", "--api-url", srv.URL, "--status", "pending")
	require.ErrorContains(t, err, "cannot be chosen")

	_, err = run(t, "review", "42", "--api-url", srv.URL, "--status", "approved")
	require.EqualError(t, err, "record 42 not found")
}

func TestListReportsStoreFailure(t *testing.T) {
	srv := newStoreServer(t)
	srv.Close()

	_, err := run(t, "list", "--api-url", srv.URL)
	require.ErrorContains(t, err, "failed to load records")
}

func TestStatusesCommand(t *testing.T) {
	out, err := run(t, "statuses")
	require.NoError(t, err)
	require.Contains(t, out, "needs_revision")
	require.Contains(t, out, "Needs Revision")
	require.Contains(t, out, "yes")
}
