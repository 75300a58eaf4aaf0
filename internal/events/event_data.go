package events

// EventData is implemented by the typed payloads carried on events
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// RollerChangedData is attached to roller lifecycle events
type RollerChangedData struct {
	Type  EventType `json:"-"`
	Slug  string    `json:"slug"`
	Name  string    `json:"name"`
	Genes int       `json:"genes"`
}

// EventType returns the lifecycle event this change belongs to
func (d *RollerChangedData) EventType() EventType {
	return d.Type
}

// RollCompletedData contains data for RollCompleted events
type RollCompletedData struct {
	Slug     string `json:"slug"`
	Outcomes int    `json:"outcomes"`
	// Top is the most likely outcome, empty when nothing contributed
	Top        []string `json:"top,omitempty"`
	TopPercent string   `json:"top_percent,omitempty"`
}

// EventType returns the event type for RollCompletedData
func (d *RollCompletedData) EventType() EventType {
	return RollCompleted
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}
