package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domain "github.com/worklens/worklens-agent-go/internal/domain/attendance"
	"github.com/worklens/worklens-agent-go/internal/repository/memory"
)

const employeeID = "emp-0001"

// newTestService wires the service to the in-memory repository with a
// settable clock.
func newTestService(t *testing.T, start time.Time) (*AttendanceServiceImpl, *time.Time) {
	t.Helper()
	now := start
	svc := NewAttendanceService(memory.NewAttendanceRepository())
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestAttendanceService_TodayWithoutSession(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, start)

	session, err := svc.TodaySession(context.Background(), employeeID)
	require.NoError(t, err)

	assert.Empty(t, session.SessionID)
	assert.False(t, session.Working)
	assert.False(t, session.OnBreak)
	assert.Nil(t, session.CheckInTime)
	assert.Equal(t, 0, session.TotalMinutes)
	assert.Equal(t, "2026-08-29", session.Date)
}

func TestAttendanceService_CheckInOpensSession(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, start)

	session, err := svc.CheckIn(context.Background(), employeeID)
	require.NoError(t, err)

	assert.NotEmpty(t, session.SessionID)
	assert.True(t, session.Working)
	assert.False(t, session.OnBreak)
	require.NotNil(t, session.CheckInTime)
	assert.Equal(t, start, *session.CheckInTime)
	assert.Equal(t, 0, session.TotalMinutes)

	_, err = svc.CheckIn(context.Background(), employeeID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
}

func TestAttendanceService_OneSessionPerDay(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, start)

	_, err := svc.CheckIn(context.Background(), employeeID)
	require.NoError(t, err)

	*now = start.Add(8 * time.Hour)
	_, err = svc.CheckOut(context.Background(), employeeID)
	require.NoError(t, err)

	// A second check-in on the same day is refused.
	_, err = svc.CheckIn(context.Background(), employeeID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedOut)

	// The next day starts fresh.
	*now = start.Add(24 * time.Hour)
	session, err := svc.CheckIn(context.Background(), employeeID)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", session.Date)
}

func TestAttendanceService_WorkedMinutesExcludeBreaks(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, start)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID)
	require.NoError(t, err)

	*now = start.Add(60 * time.Minute)
	session, err := svc.BreakStart(ctx, employeeID)
	require.NoError(t, err)
	assert.True(t, session.OnBreak)
	require.NotNil(t, session.BreakStartTime)
	assert.Equal(t, 60, session.TotalMinutes)

	// Frozen while the break is open.
	*now = start.Add(75 * time.Minute)
	session, err = svc.TodaySession(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, 60, session.TotalMinutes)

	*now = start.Add(90 * time.Minute)
	session, err = svc.BreakEnd(ctx, employeeID)
	require.NoError(t, err)
	assert.False(t, session.OnBreak)
	assert.Nil(t, session.BreakStartTime)
	assert.Equal(t, 60, session.TotalMinutes)

	// Accrues again after the break, minus the 30 break minutes.
	*now = start.Add(120 * time.Minute)
	session, err = svc.TodaySession(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, 90, session.TotalMinutes)
}

func TestAttendanceService_CheckoutFinalizesTotal(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, start)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID)
	require.NoError(t, err)

	*now = start.Add(47 * time.Minute)
	session, err := svc.CheckOut(ctx, employeeID)
	require.NoError(t, err)
	assert.False(t, session.Working)
	assert.Nil(t, session.CheckInTime)
	assert.Equal(t, 47, session.TotalMinutes)

	// The total no longer moves once checked out.
	*now = start.Add(3 * time.Hour)
	session, err = svc.TodaySession(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, 47, session.TotalMinutes)
	assert.NotEmpty(t, session.SessionID)
}

func TestAttendanceService_CheckoutRefusedDuringBreak(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, start)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID)
	require.NoError(t, err)

	*now = start.Add(time.Hour)
	_, err = svc.BreakStart(ctx, employeeID)
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, employeeID)
	assert.ErrorIs(t, err, domain.ErrCheckoutOnBreak)

	// Still on break, nothing was closed.
	session, err := svc.TodaySession(ctx, employeeID)
	require.NoError(t, err)
	assert.True(t, session.OnBreak)
}

func TestAttendanceService_BreakGuards(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, start)
	ctx := context.Background()

	_, err := svc.BreakStart(ctx, employeeID)
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)

	_, err = svc.CheckIn(ctx, employeeID)
	require.NoError(t, err)

	_, err = svc.BreakEnd(ctx, employeeID)
	assert.ErrorIs(t, err, domain.ErrNoOpenBreak)

	*now = start.Add(time.Hour)
	_, err = svc.BreakStart(ctx, employeeID)
	require.NoError(t, err)

	_, err = svc.BreakStart(ctx, employeeID)
	assert.ErrorIs(t, err, domain.ErrBreakAlreadyOpen)
}

func TestAttendanceService_MultipleBreaks(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, now := newTestService(t, start)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID)
	require.NoError(t, err)

	for i, window := range []struct{ from, to time.Duration }{
		{60 * time.Minute, 75 * time.Minute},
		{180 * time.Minute, 210 * time.Minute},
	} {
		*now = start.Add(window.from)
		_, err = svc.BreakStart(ctx, employeeID)
		require.NoError(t, err, "break %d start", i)
		*now = start.Add(window.to)
		_, err = svc.BreakEnd(ctx, employeeID)
		require.NoError(t, err, "break %d end", i)
	}

	// 8h span minus 15m and 30m of breaks.
	*now = start.Add(8 * time.Hour)
	session, err := svc.CheckOut(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, 480-45, session.TotalMinutes)
}

func TestAttendanceService_ActionsWithoutSession(t *testing.T) {
	start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, start)
	ctx := context.Background()

	_, err := svc.CheckOut(ctx, employeeID)
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)

	_, err = svc.BreakEnd(ctx, employeeID)
	assert.ErrorIs(t, err, domain.ErrNotCheckedIn)
}
