package realtime

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	initialRetryWait = time.Second
	maxRetryWait     = 30 * time.Second
)

// Socket is the agent's side of the realtime channel. One Socket exists per
// authenticated session: it is created when the agent starts and closed when
// the agent shuts down. The connection underneath it comes and goes; a lost
// or never-established connection re-dials in the background with backoff,
// so presence resumes on its own once the server is reachable again.
type Socket struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	closed    bool
	retryWait time.Duration

	dialURL string
	logger  *slog.Logger
}

// Dial builds the channel and attempts the first connection. The bearer
// token travels as a query parameter, matching the server's upgrade handler.
// A server that is not up yet is not an error: the socket keeps retrying
// until Close.
func Dial(rawURL, token string, logger *slog.Logger) (*Socket, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime URL: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	s := &Socket{
		dialURL:   u.String(),
		logger:    logger,
		retryWait: initialRetryWait,
	}

	if err := s.connect(); err != nil {
		logger.Warn("realtime channel unavailable, retrying", "error", err)
		go s.reconnect()
	}
	return s, nil
}

// connect dials once and, on success, installs the connection and starts
// its read pump.
func (s *Socket) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.dialURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial realtime channel: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	s.conn = conn
	s.retryWait = initialRetryWait
	s.mu.Unlock()

	go s.readPump(conn)
	return nil
}

// readPump drains the connection. The agent consumes no inbound events
// itself, but reading is what notices a server-side close; when it does,
// the broken connection is torn down and a reconnect starts.
func (s *Socket) readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.Close()

			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			closed := s.closed
			s.mu.Unlock()

			if !closed {
				s.logger.Debug("realtime channel lost", "error", err)
				go s.reconnect()
			}
			return
		}
	}
}

// reconnect re-dials until a connection is installed or the socket closes,
// doubling the wait between attempts up to maxRetryWait.
func (s *Socket) reconnect() {
	for {
		s.mu.Lock()
		if s.closed || s.conn != nil {
			s.mu.Unlock()
			return
		}
		wait := s.retryWait
		if s.retryWait < maxRetryWait {
			s.retryWait *= 2
		}
		s.mu.Unlock()

		time.Sleep(wait)

		s.mu.Lock()
		if s.closed || s.conn != nil {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if err := s.connect(); err == nil {
			return
		}
	}
}

// Heartbeat emits the presence liveness signal. It carries no payload beyond
// identifying the connection. While disconnected it fails fast; the
// background reconnect restores delivery.
func (s *Socket) Heartbeat() error {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return fmt.Errorf("realtime channel is not connected")
	}
	err := conn.WriteJSON(Message{Event: EventHeartbeat})
	s.mu.Unlock()

	if err != nil {
		// The read pump notices the closed connection and re-dials.
		conn.Close()
	}
	return err
}

// Close tears the channel down for good; no further reconnects happen.
func (s *Socket) Close() {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
