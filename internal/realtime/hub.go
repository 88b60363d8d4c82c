package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is the simulator's side of the realtime channel. It accepts one
// websocket per agent, consumes heartbeat frames, and keeps a last-seen
// timestamp per employee for the presence endpoint.
type Hub struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time
	auth     *jwtauth.JWTAuth
	now      func() time.Time
}

func NewHub(auth *jwtauth.JWTAuth) *Hub {
	return &Hub{
		lastSeen: make(map[string]time.Time),
		auth:     auth,
		now:      time.Now,
	}
}

// HandleWebSocket upgrades the connection. Authentication uses a token query
// parameter since browsers cannot set headers on websocket upgrades.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.auth.Decode(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	claims, err := token.AsMap(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	employeeID, _ := claims["employee_id"].(string)
	if employeeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.touch(employeeID)

	go func() {
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.Event == EventHeartbeat {
				h.touch(employeeID)
			}
		}
	}()
}

// Presence returns the last heartbeat time per employee.
func (h *Hub) Presence() map[string]time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]time.Time, len(h.lastSeen))
	for k, v := range h.lastSeen {
		out[k] = v
	}
	return out
}

func (h *Hub) touch(employeeID string) {
	h.mu.Lock()
	h.lastSeen[employeeID] = h.now()
	h.mu.Unlock()
}
