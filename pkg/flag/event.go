package flag

// EventType classifies a change-bus notification.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is a change notification carried on the change bus. Delivery is
// best-effort and unordered across processes; applying an event is
// idempotent (last-write-wins keyed by the record key), and the periodic
// reload backstops any loss. Origin carries the publishing engine's
// instance ID so a process can recognize its own notifications.
type Event struct {
	ID     string    `json:"id,omitempty"`
	Type   EventType `json:"type"`
	Record *Flag     `json:"record"`
	Origin string    `json:"origin,omitempty"`
}

// Valid reports whether the event is structurally applicable: a known type
// and a record with a non-empty key. Malformed events are dropped by
// subscribers, never applied.
func (e Event) Valid() bool {
	switch e.Type {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return false
	}
	return e.Record != nil && e.Record.Key != ""
}
