package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/worklens/worklens-agent-go/internal/domain/tracking"
)

// Client talks to the remote attendance backend. Every request carries the
// bearer credential of the authenticated session; auth rejections are never
// retried here, they surface as an APIError for the caller to report.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError is a non-2xx answer from the backend. Message carries the
// server-provided reason when the envelope had one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("attendance API error [%d]", e.StatusCode)
}

// envelope mirrors the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorDetail    `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// TodaySession fetches the authoritative session record for today.
func (c *Client) TodaySession(ctx context.Context) (tracking.TodaySession, error) {
	var session tracking.TodaySession
	if err := c.do(ctx, http.MethodGet, "/attendance/today", &session); err != nil {
		return tracking.TodaySession{}, err
	}
	return session, nil
}

// CheckIn opens today's work session.
func (c *Client) CheckIn(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/attendance/check-in", nil)
}

// CheckOut closes today's work session.
func (c *Client) CheckOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/attendance/checkout", nil)
}

// BreakStart opens a break window.
func (c *Client) BreakStart(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/attendance/break-start", nil)
}

// BreakEnd closes the open break window.
func (c *Client) BreakEnd(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/attendance/break-end", nil)
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if len(body) > 0 {
		// A non-envelope body is tolerated; status code still decides.
		_ = json.Unmarshal(body, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		} else if env.Message != "" {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out != nil {
		if env.Data == nil {
			return fmt.Errorf("empty data in response from %s", path)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}
