// Package handlers provides HTTP handlers for odds templates.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/genetics"
	"github.com/aristath/breeder/internal/i18n"
	"github.com/aristath/breeder/internal/modules/odds"
)

const maxConfigBytes = 64 << 10

// Handler handles odds template HTTP requests
type Handler struct {
	service   *odds.Service
	localizer *i18n.Localizer
	log       zerolog.Logger
}

// NewHandler creates a new odds handler
func NewHandler(service *odds.Service, localizer *i18n.Localizer, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		localizer: localizer,
		log:       log.With().Str("handler", "odds").Logger(),
	}
}

// HandleList handles GET /api/odds/templates
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list odds templates")
		h.writeError(w, http.StatusInternalServerError, "Failed to list odds templates")
		return
	}
	if templates == nil {
		templates = []odds.Template{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": templates,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(templates),
		},
	})
}

// HandleSave handles PUT /api/odds/templates/{type}/{name}
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	lang := h.localizer.Resolve(r)

	typ, err := odds.ParseTemplateType(chi.URLParam(r, "type"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, h.localizer.Sprintf(lang, "odds.invalid_type"))
		return
	}
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBytes))
	if err != nil || !json.Valid(body) {
		h.writeError(w, http.StatusBadRequest, h.localizer.Sprintf(lang, "request.invalid_body"))
		return
	}

	template, err := h.service.Save(r.Context(), typ, name, body)
	if err != nil {
		if genetics.KindOf(err) != "" {
			h.writeError(w, http.StatusUnprocessableEntity, h.localizer.Localize(err, lang))
			return
		}
		h.log.Warn().Err(err).Str("type", string(typ)).Str("name", name).Msg("Rejected odds template")
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": template,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
