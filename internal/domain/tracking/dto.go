package tracking

import "time"

// ========================================
// TRACKING DTOs
// ========================================

// TodaySession is the wire shape of the authoritative "today" session
// record. Optional fields appear or disappear by state: CheckInTime is set
// iff an open check-in exists, BreakStartTime iff an open break exists.
type TodaySession struct {
	SessionID      string     `json:"sessionId,omitempty"`
	Working        bool       `json:"working"`
	OnBreak        bool       `json:"onBreak"`
	CheckInTime    *time.Time `json:"checkInTime,omitempty"`
	BreakStartTime *time.Time `json:"breakStartTime,omitempty"`
	TotalMinutes   int        `json:"totalMinutes"`
	Date           string     `json:"date"`
}

// StatusResponse is the snapshot served by the agent control surface. It is
// derived state only and is rebuilt from the engine on every request.
type StatusResponse struct {
	Phase               string `json:"phase"`
	SessionID           string `json:"session_id,omitempty"`
	Date                string `json:"date,omitempty"`
	ElapsedWorkSeconds  int    `json:"elapsed_work_seconds"`
	ElapsedBreakSeconds int    `json:"elapsed_break_seconds"`
	WorkClock           string `json:"work_clock"`
	BreakClock          string `json:"break_clock"`
	TotalMinutes        int    `json:"total_minutes"`
	TotalLabel          string `json:"total_label"`
	ActionInFlight      bool   `json:"action_in_flight"`
	BreakActionInFlight bool   `json:"break_action_in_flight"`
}

// CheckOutRequest carries the confirmation gate for the checkout action.
type CheckOutRequest struct {
	Confirm bool `json:"confirm"`
}
