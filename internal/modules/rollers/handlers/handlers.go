// Package handlers provides HTTP handlers for rollers and stateless breeding.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/dictionary"
	"github.com/aristath/breeder/internal/genetics"
	"github.com/aristath/breeder/internal/i18n"
	"github.com/aristath/breeder/internal/modules/rollers"
)

const maxBodyBytes = 1 << 20

// Handler handles roller HTTP requests
type Handler struct {
	service   *rollers.Service
	localizer *i18n.Localizer
	log       zerolog.Logger
}

// NewHandler creates a new rollers handler
func NewHandler(service *rollers.Service, localizer *i18n.Localizer, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		localizer: localizer,
		log:       log.With().Str("handler", "rollers").Logger(),
	}
}

// RollRequest is the body of a roll
type RollRequest struct {
	SireGenes string `json:"sire_genes"`
	DamGenes  string `json:"dam_genes"`
}

// HandleList handles GET /api/rollers
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []rollers.Roller{}
	}
	h.writeData(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/rollers
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in rollers.CreateInput
	if !h.decode(w, r, &in) {
		return
	}

	roller, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusCreated, roller)
}

// HandleGet handles GET /api/rollers/{slug}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	roller, err := h.service.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, roller)
}

// HandleUpdateDictionary handles PUT /api/rollers/{slug}/dictionary. The body is
// either a JSON array of genes or, with a YAML content type, a dictionary
// document whose genes replace the current ones.
func (h *Handler) HandleUpdateDictionary(w http.ResponseWriter, r *http.Request) {
	var dict genetics.GeneDictionary

	if isYAML(r) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			h.writeBadRequest(w, r)
			return
		}
		doc, err := dictionary.Parse(body)
		if err != nil {
			h.writeFieldErrors(w, r, rollers.FieldDictionary, err)
			return
		}
		dict = doc.Genes
	} else if !h.decode(w, r, &dict) {
		return
	}

	roller, err := h.service.UpdateDictionary(r.Context(), chi.URLParam(r, "slug"), dict)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, roller)
}

// HandleUpdateOdds handles PUT /api/rollers/{slug}/odds
func (h *Handler) HandleUpdateOdds(w http.ResponseWriter, r *http.Request) {
	var odds genetics.OddsConfig
	if !h.decode(w, r, &odds) {
		return
	}

	roller, err := h.service.UpdateOdds(r.Context(), chi.URLParam(r, "slug"), odds)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, roller)
}

// HandleDelete handles DELETE /api/rollers/{slug}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRoll handles POST /api/rollers/{slug}/roll
func (h *Handler) HandleRoll(w http.ResponseWriter, r *http.Request) {
	var req RollRequest
	if !h.decode(w, r, &req) {
		return
	}

	lang := h.localizer.Resolve(r)
	missing := map[string][]string{}
	if req.SireGenes == "" {
		missing[rollers.FieldSire] = []string{h.localizer.Sprintf(lang, "request.field_required")}
	}
	if req.DamGenes == "" {
		missing[rollers.FieldDam] = []string{h.localizer.Sprintf(lang, "request.field_required")}
	}
	if len(missing) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": missing})
		return
	}

	result, err := h.service.Roll(r.Context(), chi.URLParam(r, "slug"), req.SireGenes, req.DamGenes)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, result)
}

// HandleLastRoll handles GET /api/rollers/{slug}/last-roll. The data is null
// when the roller has not been rolled recently.
func (h *Handler) HandleLastRoll(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.LastRoll(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, result)
}

// HandleComputeOutcomes handles POST /api/genetics/outcomes
func (h *Handler) HandleComputeOutcomes(w http.ResponseWriter, r *http.Request) {
	var in rollers.ComputeInput
	if !h.decode(w, r, &in) {
		return
	}

	results, err := h.service.Compute(in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, results)
}

func isYAML(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dest); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeBadRequest(w, r)
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lang := h.localizer.Resolve(r)

	var nf *rollers.NotFoundError
	var ferr *rollers.FieldError
	switch {
	case errors.As(err, &nf):
		msg := h.localizer.Sprintf(lang, "roller.not_found", nf.Slug)
		if nf.Suggestion != "" {
			msg = h.localizer.Sprintf(lang, "roller.did_you_mean", nf.Slug, nf.Suggestion)
		}
		h.writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":      msg,
			"suggestion": nf.Suggestion,
		})
	case errors.Is(err, rollers.ErrCoreRoller):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &ferr):
		h.writeFieldErrors(w, r, ferr.Field, ferr.Err)
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) writeFieldErrors(w http.ResponseWriter, r *http.Request, field string, err error) {
	h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"errors": map[string][]string{
			field: {h.localizer.Localize(err, h.localizer.Resolve(r))},
		},
	})
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusBadRequest, h.localizer.Sprintf(h.localizer.Resolve(r), "request.invalid_body"))
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
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
