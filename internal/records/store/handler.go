package store

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reviewdesk/reviewdesk/internal/platform/httpx"
	"github.com/reviewdesk/reviewdesk/internal/records"
)

// Handler exposes the record store over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "page must be a number")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "limit must be a number")
		return
	}
	result, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var patch records.Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), patch)
	if err != nil {
		h.respondError(w, "update record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
