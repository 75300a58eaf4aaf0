package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers roller and breeding routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rollers", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Put("/dictionary", h.HandleUpdateDictionary)
			r.Put("/odds", h.HandleUpdateOdds)
			r.Post("/roll", h.HandleRoll)
			r.Get("/last-roll", h.HandleLastRoll)
		})
	})

	r.Post("/genetics/outcomes", h.HandleComputeOutcomes)
}
