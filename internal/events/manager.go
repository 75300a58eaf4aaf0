// Package events provides event emission, logging and in-process fan-out.
package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	RollerCreated   EventType = "ROLLER_CREATED"
	RollerUpdated   EventType = "ROLLER_UPDATED"
	RollerDeleted   EventType = "ROLLER_DELETED"
	RollCompleted   EventType = "ROLL_COMPLETED"
	BackupCompleted EventType = "BACKUP_COMPLETED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type in emission-agnostic order
var AllTypes = []EventType{
	RollerCreated,
	RollerUpdated,
	RollerDeleted,
	RollCompleted,
	BackupCompleted,
	ErrorOccurred,
}

// Event represents a system event
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Module    string      `json:"module"`
	Data      interface{} `json:"data"`
}

// Manager logs events and publishes them on its bus
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
	}
}

// Bus returns the bus events are published on
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Emit emits an event with typed data
func (m *Manager) Emit(module string, data EventData) {
	m.emit(data.EventType(), module, data)
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.emit(ErrorOccurred, module, map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	})
}

func (m *Manager) emit(eventType EventType, module string, data interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		m.log.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to encode event")
	} else {
		m.log.Info().
			Str("event_type", string(eventType)).
			Str("module", module).
			RawJSON("event", eventJSON).
			Msg("Event emitted")
	}

	if m.bus != nil {
		m.bus.Publish(event)
	}
}
