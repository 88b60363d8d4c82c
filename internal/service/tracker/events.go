package tracker

// EventKind classifies a user-visible notification.
type EventKind string

const (
	EventSuccess EventKind = "success"
	EventWarning EventKind = "warning"
	EventError   EventKind = "error"
)

// Event is one user-visible notification from the engine: an action outcome,
// a refused transition, or a sync failure.
type Event struct {
	Kind    EventKind
	Message string
}
