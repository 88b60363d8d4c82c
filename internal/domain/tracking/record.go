package tracking

import (
	"fmt"
	"time"
)

// Phase is the canonical session state, derived from the (working, onBreak)
// pair of the authoritative record.
type Phase string

const (
	PhaseCheckedOut Phase = "checked_out"
	PhaseWorking    Phase = "working"
	PhaseOnBreak    Phase = "on_break"
)

// SessionRecord is the client-held view of the server's session for today.
// It is a tagged form of the duck-typed wire record: CheckInTime is only
// meaningful while Working or OnBreak, BreakStartTime only while OnBreak.
type SessionRecord struct {
	SessionID      string
	Phase          Phase
	CheckInTime    time.Time
	BreakStartTime time.Time
	TotalMinutes   int
	Date           string
}

// NewSessionRecord validates a wire record and converts it into the tagged
// form. Illegal field combinations (onBreak without working, working without
// a check-in time) are rejected rather than guessed around.
func NewSessionRecord(wire TodaySession) (SessionRecord, error) {
	rec := SessionRecord{
		SessionID:    wire.SessionID,
		TotalMinutes: wire.TotalMinutes,
		Date:         wire.Date,
	}
	if rec.TotalMinutes < 0 {
		return SessionRecord{}, fmt.Errorf("%w: negative totalMinutes %d", ErrMalformedSession, wire.TotalMinutes)
	}

	switch {
	case !wire.Working:
		if wire.OnBreak {
			return SessionRecord{}, fmt.Errorf("%w: onBreak without working", ErrMalformedSession)
		}
		rec.Phase = PhaseCheckedOut
	case wire.OnBreak:
		if wire.CheckInTime == nil {
			return SessionRecord{}, fmt.Errorf("%w: working without checkInTime", ErrMalformedSession)
		}
		if wire.BreakStartTime == nil {
			return SessionRecord{}, fmt.Errorf("%w: onBreak without breakStartTime", ErrMalformedSession)
		}
		rec.Phase = PhaseOnBreak
		rec.CheckInTime = *wire.CheckInTime
		rec.BreakStartTime = *wire.BreakStartTime
	default:
		if wire.CheckInTime == nil {
			return SessionRecord{}, fmt.Errorf("%w: working without checkInTime", ErrMalformedSession)
		}
		rec.Phase = PhaseWorking
		rec.CheckInTime = *wire.CheckInTime
	}

	return rec, nil
}

// Working reports whether an open check-in exists.
func (r SessionRecord) Working() bool {
	return r.Phase == PhaseWorking || r.Phase == PhaseOnBreak
}

// OnBreak reports whether an open break window exists.
func (r SessionRecord) OnBreak() bool {
	return r.Phase == PhaseOnBreak
}

// GuardCheckIn returns nil when a check-in is permitted from this record.
func (r SessionRecord) GuardCheckIn() error {
	if r.Working() {
		return ErrAlreadyCheckedIn
	}
	return nil
}

// GuardCheckOut returns nil when a check-out is permitted. Checkout during a
// break is refused outright; there is no OnBreak -> CheckedOut transition.
func (r SessionRecord) GuardCheckOut() error {
	if r.OnBreak() {
		return ErrCheckoutDuringBreak
	}
	if !r.Working() {
		return ErrNotCheckedIn
	}
	return nil
}

// GuardBreakStart returns nil when a break may be started.
func (r SessionRecord) GuardBreakStart() error {
	if !r.Working() {
		return ErrNotCheckedIn
	}
	if r.OnBreak() {
		return ErrAlreadyOnBreak
	}
	return nil
}

// GuardBreakEnd returns nil when an open break may be ended.
func (r SessionRecord) GuardBreakEnd() error {
	if !r.OnBreak() {
		return ErrNotOnBreak
	}
	return nil
}

// ElapsedWorkSeconds computes the seconds to seed the work timer with at
// reconcile time. Skew between server and client clocks is clamped to zero,
// never shown as a negative count. Outside the Working phase the work timer
// is not live: the authoritative minute total is pinned instead of a locally
// ticked value (during a break the frozen local counter, when one exists,
// takes precedence over this cold seed).
func (r SessionRecord) ElapsedWorkSeconds(now time.Time) int {
	if r.Phase != PhaseWorking {
		return r.TotalMinutes * 60
	}
	elapsed := int(now.Sub(r.CheckInTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ElapsedBreakSeconds computes the seconds to seed the break timer with at
// reconcile time, clamped to zero on skew.
func (r SessionRecord) ElapsedBreakSeconds(now time.Time) int {
	if !r.OnBreak() {
		return 0
	}
	elapsed := int(now.Sub(r.BreakStartTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
