package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(nil, NewService(NewMemoryRepository(fixture()))).MountRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestListRecordsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := serve(router, http.MethodGet, "/records?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var page records.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Records, 2)

	rr = serve(router, http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Records, 3)

	rr = serve(router, http.MethodGet, "/records?page=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"error":"page must be a number"}`, rr.Body.String())
}

func TestPatchRecordEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := serve(router, http.MethodPatch, "/records", `{"id":"1","status":"approved","note":"Reviewed and approved."}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"id":"1","name":"Specimen A","description":"Pending specimen","status":"approved","note":"Reviewed and approved."}`, rr.Body.String())

	rr = serve(router, http.MethodGet, "/records/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"status":"approved"`)
}

func TestPatchRecordErrors(t *testing.T) {
	router := newTestRouter(t)

	rr := serve(router, http.MethodPatch, "/records", `{"id":"42","status":"approved"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.JSONEq(t, `{"error":"Record with id 42 not found."}`, rr.Body.String())

	rr = serve(router, http.MethodPatch, "/records", `{"id":"1","status":"archived"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "status must be one of")

	rr = serve(router, http.MethodPatch, "/records", `{`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, http.MethodGet, "/records/missing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
