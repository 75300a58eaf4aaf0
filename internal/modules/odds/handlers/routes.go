package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers odds template routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/odds/templates", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Put("/{type}/{name}", h.HandleSave)
	})
}
