package companion

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCall struct {
	path    string
	payload map[string]string
}

func newCaptureServer(t *testing.T) (*httptest.Server, <-chan capturedCall) {
	t.Helper()
	calls := make(chan capturedCall, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		calls <- capturedCall{path: r.URL.Path, payload: payload}
	}))
	t.Cleanup(server.Close)
	return server, calls
}

func awaitCall(t *testing.T, calls <-chan capturedCall) capturedCall {
	t.Helper()
	select {
	case call := <-calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("companion call never arrived")
		return capturedCall{}
	}
}

func TestHTTPNotifier_Calls(t *testing.T) {
	server, calls := newCaptureServer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewHTTPNotifier(server.URL+"/", logger)

	notifier.SetToken("secret-token")
	call := awaitCall(t, calls)
	assert.Equal(t, "/set-token", call.path)
	assert.Equal(t, "secret-token", call.payload["token"])

	notifier.StartMonitoring("s1")
	call = awaitCall(t, calls)
	assert.Equal(t, "/start-monitoring", call.path)
	assert.Equal(t, "s1", call.payload["sessionId"])

	notifier.StopMonitoring()
	call = awaitCall(t, calls)
	assert.Equal(t, "/stop-monitoring", call.path)
}

func TestHTTPNotifier_UnreachableCompanionDoesNotBlock(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewHTTPNotifier("http://127.0.0.1:1", logger)

	done := make(chan struct{})
	go func() {
		notifier.StartMonitoring("s1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier blocked the caller")
	}
}

func TestNoopNotifier(t *testing.T) {
	var n NoopNotifier
	require.NotPanics(t, func() {
		n.SetToken("t")
		n.StartMonitoring("s1")
		n.StopMonitoring()
	})
}
