package realtime

import "encoding/json"

// EventType is the kind of change carried by a ChangeEvent
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	// EventResync tells subscribers that events may have been lost and
	// the table should be reloaded in full.
	EventResync EventType = "RESYNC"

	// EventAll subscribes to every event type.
	EventAll EventType = "*"
)

// AllTables subscribes to events of every table.
const AllTables = "*"

// ChangeEvent is one row-level change on a table
type ChangeEvent struct {
	Table  string          `json:"table"`
	Type   EventType       `json:"type"`
	ID     string          `json:"id,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
}

// HasRecord reports whether the event carries the changed row.
func (e ChangeEvent) HasRecord() bool {
	return len(e.Record) > 0 && string(e.Record) != "null"
}

// ParseEventType accepts "" and "*" as EventAll.
func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(s); t {
	case "", EventAll:
		return EventAll, true
	case EventInsert, EventUpdate, EventDelete, EventResync:
		return t, true
	default:
		return "", false
	}
}
