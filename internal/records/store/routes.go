package store

import "github.com/go-chi/chi/v5"

// MountRoutes registers the record endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/records", h.list)
	r.Patch("/records", h.update)
	r.Get("/records/{id}", h.show)
}
