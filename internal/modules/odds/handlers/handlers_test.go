package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/breeder/internal/i18n"
	"github.com/aristath/breeder/internal/modules/odds"
	testutil "github.com/aristath/breeder/internal/testing"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := testutil.NewTestDB(t, "rollers")
	service := odds.NewService(odds.NewRepository(db.Conn(), logger), logger)

	router := chi.NewRouter()
	NewHandler(service, i18n.MustNew(), logger).RegisterRoutes(router)
	return router
}

func do(router chi.Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSaveAndList(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPut, "/odds/templates/punnett/skewed", `{"roll1": 40, "roll2": 30, "roll3": 20, "roll4": 10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved struct {
		Data odds.Template `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&saved))
	assert.Equal(t, "skewed", saved.Data.Name)
	assert.Equal(t, odds.TypePunnett, saved.Data.Type)

	w = do(router, http.MethodGet, "/odds/templates/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var listed struct {
		Data     []odds.Template        `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, float64(1), listed.Metadata["count"])
}

func TestHandleSave_Errors(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
		want   string
	}{
		{"unknown type", "/odds/templates/base/x", `{}`, http.StatusBadRequest, "Odds type must be punnett or percentage."},
		{"localized type", "/odds/templates/base/x?lang=pt-BR", `{}`, http.StatusBadRequest, "O tipo de probabilidade deve ser punnett ou percentage."},
		{"malformed body", "/odds/templates/punnett/x", `{"roll1":`, http.StatusBadRequest, "The request body could not be read."},
		{"bad label", "/odds/templates/percentage/x", `{"domXdom": {"half": 1}}`, http.StatusUnprocessableEntity, `"half" is not an outcome (use dom, rec or none).`},
		{"bad cell", "/odds/templates/punnett/x", `{"roll7": 1}`, http.StatusUnprocessableEntity, `unknown punnett cell "roll7", expected roll1..roll4`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.want, resp["error"])
		})
	}
}
