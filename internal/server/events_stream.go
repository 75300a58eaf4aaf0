package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/breeder/internal/events"
)

const (
	streamBufferSize   = 100
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
)

// EventsStreamHandler streams bus events to WebSocket clients as JSON text frames
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws. The optional types query parameter is a
// comma separated list of event types to receive.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types := parseTypes(r.URL.Query().Get("types"))

	// Subscribe before the handshake completes so nothing emitted after the
	// client connects is missed
	eventChan := make(chan events.Event, streamBufferSize)
	unsubscribe := h.bus.Subscribe(func(e events.Event) {
		select {
		case eventChan <- e:
		default:
			h.log.Warn().Str("event_type", string(e.Type)).Msg("Event channel full, dropping event")
		}
	}, types...)
	defer unsubscribe()

	// The server write timeout would otherwise cut the stream
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	h.log.Info().Int("types", len(types)).Msg("Client connected to event stream")

	// Clients only listen; CloseRead handles their control frames
	ctx := conn.CloseRead(r.Context())

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case <-ping.C:
			if err := h.withTimeout(ctx, conn.Ping); err != nil {
				h.log.Debug().Err(err).Msg("Ping failed")
				return
			}

		case e := <-eventChan:
			data, err := json.Marshal(e)
			if err != nil {
				h.log.Warn().Err(err).Str("event_type", string(e.Type)).Msg("Failed to encode event")
				continue
			}
			err = h.withTimeout(ctx, func(ctx context.Context) error {
				return conn.Write(ctx, websocket.MessageText, data)
			})
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					h.log.Debug().Err(err).Msg("Failed to write event")
				}
				return
			}
		}
	}
}

func (h *EventsStreamHandler) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return fn(ctx)
}

func parseTypes(raw string) []events.EventType {
	if raw == "" {
		return nil
	}
	var types []events.EventType
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, events.EventType(strings.ToUpper(t)))
		}
	}
	return types
}
