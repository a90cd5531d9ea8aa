package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/reviewdesk/reviewdesk/internal/records"
	"github.com/reviewdesk/reviewdesk/internal/records/store"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	repo := store.NewMemoryRepository([]records.Record{
		{ID: "1", Name: "Specimen A", Status: records.StatusPending},
		{ID: "2", Name: "Specimen B", Status: records.StatusApproved},
	})
	store.NewHandler(nil, store.NewService(repo)).MountRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestListAndGet(t *testing.T) {
	c := New(newServer(t).URL + "/")

	page, err := c.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Records, 1)
	require.Equal(t, "1", page.Records[0].ID)

	page, err = c.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	rec, err := c.Get(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, records.StatusApproved, rec.Status)
}

func TestUpdate(t *testing.T) {
	c := New(newServer(t).URL)

	rec, err := c.Update(context.Background(), records.NewPatch("1").WithStatus(records.StatusFlagged).WithNote("smudged"))
	require.NoError(t, err)
	require.Equal(t, records.StatusFlagged, rec.Status)
	require.Equal(t, "smudged", rec.Note)
}

func TestUpdateNotFound(t *testing.T) {
	c := New(newServer(t).URL)

	_, err := c.Update(context.Background(), records.NewPatch("42").WithStatus(records.StatusApproved))
	require.EqualError(t, err, "failed to update record: Not Found")
	require.ErrorIs(t, err, ErrNotFound)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, "Record with id 42 not found.", statusErr.Detail)
}

func TestServerErrorUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).List(context.Background(), 1, 6)
	require.EqualError(t, err, "failed to load records: Service Unavailable")
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestStatusErrorUnknownCode(t *testing.T) {
	err := &StatusError{Op: "load records", StatusCode: 599}
	require.Equal(t, "failed to load records: status 599", err.Error())
}
