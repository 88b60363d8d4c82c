package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionRecord_PhaseDerivation(t *testing.T) {
	checkIn := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	breakStart := checkIn.Add(2 * time.Hour)

	t.Run("no session", func(t *testing.T) {
		rec, err := NewSessionRecord(TodaySession{Date: "2026-08-29"})
		require.NoError(t, err)
		assert.Equal(t, PhaseCheckedOut, rec.Phase)
		assert.False(t, rec.Working())
		assert.False(t, rec.OnBreak())
	})

	t.Run("working", func(t *testing.T) {
		rec, err := NewSessionRecord(TodaySession{
			SessionID:   "s1",
			Working:     true,
			CheckInTime: &checkIn,
			Date:        "2026-08-29",
		})
		require.NoError(t, err)
		assert.Equal(t, PhaseWorking, rec.Phase)
		assert.True(t, rec.Working())
		assert.False(t, rec.OnBreak())
	})

	t.Run("on break", func(t *testing.T) {
		rec, err := NewSessionRecord(TodaySession{
			SessionID:      "s1",
			Working:        true,
			OnBreak:        true,
			CheckInTime:    &checkIn,
			BreakStartTime: &breakStart,
			TotalMinutes:   120,
			Date:           "2026-08-29",
		})
		require.NoError(t, err)
		assert.Equal(t, PhaseOnBreak, rec.Phase)
		assert.True(t, rec.Working())
		assert.True(t, rec.OnBreak())
	})
}

func TestNewSessionRecord_RejectsIllegalCombinations(t *testing.T) {
	checkIn := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		wire TodaySession
	}{
		{"on break without working", TodaySession{OnBreak: true}},
		{"working without check-in time", TodaySession{Working: true}},
		{"on break without break start time", TodaySession{Working: true, OnBreak: true, CheckInTime: &checkIn}},
		{"negative total minutes", TodaySession{TotalMinutes: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSessionRecord(tc.wire)
			assert.ErrorIs(t, err, ErrMalformedSession)
		})
	}
}

func TestSessionRecord_Guards(t *testing.T) {
	checkedOut := SessionRecord{Phase: PhaseCheckedOut}
	working := SessionRecord{Phase: PhaseWorking, SessionID: "s1"}
	onBreak := SessionRecord{Phase: PhaseOnBreak, SessionID: "s1"}

	assert.NoError(t, checkedOut.GuardCheckIn())
	assert.ErrorIs(t, working.GuardCheckIn(), ErrAlreadyCheckedIn)
	assert.ErrorIs(t, onBreak.GuardCheckIn(), ErrAlreadyCheckedIn)

	assert.ErrorIs(t, checkedOut.GuardCheckOut(), ErrNotCheckedIn)
	assert.NoError(t, working.GuardCheckOut())
	assert.ErrorIs(t, onBreak.GuardCheckOut(), ErrCheckoutDuringBreak)

	assert.ErrorIs(t, checkedOut.GuardBreakStart(), ErrNotCheckedIn)
	assert.NoError(t, working.GuardBreakStart())
	assert.ErrorIs(t, onBreak.GuardBreakStart(), ErrAlreadyOnBreak)

	assert.ErrorIs(t, checkedOut.GuardBreakEnd(), ErrNotOnBreak)
	assert.ErrorIs(t, working.GuardBreakEnd(), ErrNotOnBreak)
	assert.NoError(t, onBreak.GuardBreakEnd())
}

func TestSessionRecord_ElapsedWorkSeconds(t *testing.T) {
	checkIn := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	t.Run("live while working", func(t *testing.T) {
		rec := SessionRecord{Phase: PhaseWorking, CheckInTime: checkIn}
		assert.Equal(t, 90, rec.ElapsedWorkSeconds(checkIn.Add(90*time.Second)))
	})

	t.Run("clamped on clock skew", func(t *testing.T) {
		rec := SessionRecord{Phase: PhaseWorking, CheckInTime: checkIn}
		assert.Equal(t, 0, rec.ElapsedWorkSeconds(checkIn.Add(-time.Minute)))
	})

	t.Run("pinned to total outside working", func(t *testing.T) {
		rec := SessionRecord{Phase: PhaseCheckedOut, TotalMinutes: 47}
		assert.Equal(t, 47*60, rec.ElapsedWorkSeconds(checkIn))

		rec = SessionRecord{Phase: PhaseOnBreak, CheckInTime: checkIn, BreakStartTime: checkIn, TotalMinutes: 10}
		assert.Equal(t, 600, rec.ElapsedWorkSeconds(checkIn.Add(time.Hour)))
	})
}

func TestSessionRecord_ElapsedBreakSeconds(t *testing.T) {
	breakStart := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)

	rec := SessionRecord{Phase: PhaseOnBreak, BreakStartTime: breakStart}
	assert.Equal(t, 300, rec.ElapsedBreakSeconds(breakStart.Add(5*time.Minute)))
	assert.Equal(t, 0, rec.ElapsedBreakSeconds(breakStart.Add(-time.Second)))

	working := SessionRecord{Phase: PhaseWorking}
	assert.Equal(t, 0, working.ElapsedBreakSeconds(breakStart))
}
