package realtime

// Event names exchanged on the realtime channel.
const (
	EventHeartbeat = "heartbeat"
)

// Message is the JSON frame sent over the realtime channel.
type Message struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
}
