package companion

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Notifier tells the optional local companion process (screenshot capture,
// idle detection) when monitoring should run. Calls are best-effort: the
// companion being absent must never block or fail an attendance action, so
// no method returns an error.
type Notifier interface {
	SetToken(token string)
	StartMonitoring(sessionID string)
	StopMonitoring()
}

// HTTPNotifier posts to the companion's local bridge endpoint.
type HTTPNotifier struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPNotifier(baseURL string, logger *slog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
		logger: logger,
	}
}

// SetToken implements Notifier.
func (n *HTTPNotifier) SetToken(token string) {
	n.send("/set-token", map[string]string{"token": token})
}

// StartMonitoring implements Notifier.
func (n *HTTPNotifier) StartMonitoring(sessionID string) {
	n.send("/start-monitoring", map[string]string{"sessionId": sessionID})
}

// StopMonitoring implements Notifier.
func (n *HTTPNotifier) StopMonitoring() {
	n.send("/stop-monitoring", nil)
}

// send fires the request without awaiting the outcome in the caller's path.
func (n *HTTPNotifier) send(path string, payload map[string]string) {
	body, _ := json.Marshal(payload)
	go func() {
		resp, err := n.httpClient.Post(n.baseURL+path, "application/json", bytes.NewReader(body))
		if err != nil {
			n.logger.Debug("companion unreachable", "path", path, "error", err)
			return
		}
		resp.Body.Close()
	}()
}

// NoopNotifier is used when no companion is configured.
type NoopNotifier struct{}

func (NoopNotifier) SetToken(string)        {}
func (NoopNotifier) StartMonitoring(string) {}
func (NoopNotifier) StopMonitoring()        {}
