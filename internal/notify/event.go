package notify

import "time"

type EventType string

const (
	EventNewDisaster     EventType = "new_disaster"
	EventNewReport       EventType = "new_disaster_report"
	EventNewVictimReport EventType = "new_disaster_victim_report"
	EventNewAidReport    EventType = "new_disaster_aid_report"
	EventStatusChanged   EventType = "disaster_status_changed"
)

// Event is what the core pushes to the notification sink when a disaster is
// registered, a field record lands, or the status changes.
type Event struct {
	Type       EventType
	DisasterID string
	Title      string
	Message    string
	CreatedAt  time.Time
}

// Notifier is the sink consumed by the service layer. Delivery is
// fire-and-forget; implementations must not block the caller.
type Notifier interface {
	Notify(e Event)
}
