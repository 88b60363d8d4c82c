package attendance

import (
	"context"

	"github.com/worklens/worklens-agent-go/internal/domain/tracking"
)

// Service defines the business logic behind the attendance endpoints the
// tracking agent consumes.
type Service interface {
	// TodaySession returns the authoritative session record for today.
	TodaySession(ctx context.Context, employeeID string) (tracking.TodaySession, error)

	// CheckIn opens today's work session.
	CheckIn(ctx context.Context, employeeID string) (tracking.TodaySession, error)

	// CheckOut closes today's open session. Refused while a break is open.
	CheckOut(ctx context.Context, employeeID string) (tracking.TodaySession, error)

	// BreakStart opens a break window inside the open session.
	BreakStart(ctx context.Context, employeeID string) (tracking.TodaySession, error)

	// BreakEnd closes the open break window.
	BreakEnd(ctx context.Context, employeeID string) (tracking.TodaySession, error)
}
