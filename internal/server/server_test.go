package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/aristath/breeder/internal/config"
	"github.com/aristath/breeder/internal/di"
	"github.com/aristath/breeder/internal/dictionary"
	"github.com/aristath/breeder/internal/events"
)

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()

	cfg := &config.Config{
		DataDir:               t.TempDir(),
		Port:                  8001,
		MaxGenes:              12,
		LastRollTTL:           time.Hour,
		CacheCleanupSchedule:  "@every 1h",
		WALCheckpointSchedule: "@every 6h",
		MaintenanceSchedule:   "0 30 2 * * *",
	}

	container, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	ctx := context.Background()
	require.NoError(t, container.OddsService.SeedDefaults(ctx))
	_, err = container.RollersService.SeedDefaults(ctx, dictionary.Default())
	require.NoError(t, err)

	srv := New(Config{
		Log:       zerolog.New(nil).Level(zerolog.Disabled),
		Container: container,
		DataDir:   cfg.DataDir,
		Port:      cfg.Port,
		DevMode:   true,
	})
	return srv, container
}

func serve(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "breeder", body["service"])
}

func TestServer_SystemStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, http.MethodGet, "/api/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.False(t, status.BackupsEnabled)
	assert.Equal(t, []string{"cache_cleanup", "daily_maintenance", "wal_checkpoint"}, status.Jobs)
	require.Len(t, status.Databases, 2)
	assert.Equal(t, "rollers", status.Databases[0].Name)
	require.NotNil(t, status.Databases[0].Stats)
	assert.Positive(t, status.Databases[0].PageCount)
}

func TestServer_Jobs(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, http.MethodPost, "/api/system/jobs/cache_cleanup", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = serve(t, srv, http.MethodPost, "/api/system/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_BackupDisabled(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, tt := range []struct{ method, path string }{
		{http.MethodPost, "/api/system/backup"},
		{http.MethodGet, "/api/system/backups"},
	} {
		w := serve(t, srv, tt.method, tt.path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tt.path)
	}
}

func TestServer_ModuleRoutesMounted(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, http.MethodGet, "/api/rollers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"realistic-equine"`)

	w = serve(t, srv, http.MethodGet, "/api/odds/templates", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, srv, http.MethodGet, "/api/rollers/realistic-equin", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"suggestion":"realistic-equine"`)
}

func TestServer_EventStream(t *testing.T) {
	srv, container := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events/ws?types=roll_completed"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// filtered out
	container.EventManager.Emit("test", &events.BackupCompletedData{Key: "k"})

	_, err = container.RollersService.Roll(ctx, "realistic-equine", "nZ Ee/Aa", "ee, AA")
	require.NoError(t, err)

	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, msgType)

	var event struct {
		Type   events.EventType       `json:"type"`
		Module string                 `json:"module"`
		Data   map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, events.RollCompleted, event.Type)
	assert.Equal(t, "realistic-equine", event.Data["slug"])
}

func TestParseTypes(t *testing.T) {
	assert.Nil(t, parseTypes(""))
	assert.Equal(t,
		[]events.EventType{events.RollCompleted, events.RollerCreated},
		parseTypes(" roll_completed, ,ROLLER_CREATED"))
}
