package cron

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
	"github.com/worklens/worklens-agent-go/internal/repository/memory"
)

func TestAutoCloseStaleSessions(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	ctx := context.Background()

	yesterday := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	breakStart := yesterday.Add(3 * time.Hour)
	require.NoError(t, repo.Save(ctx, attendance.Day{
		SessionID:  "stale-1",
		EmployeeID: "emp-0001",
		Date:       "2026-08-28",
		CheckIn:    &yesterday,
		Breaks:     []attendance.Break{{Start: breakStart}},
	}))

	today := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, attendance.Day{
		SessionID:  "open-today",
		EmployeeID: "emp-0002",
		Date:       "2026-08-29",
		CheckIn:    &today,
	}))

	jobs := NewAttendanceJobs(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	jobs.now = func() time.Time { return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.AutoCloseStaleSessions(ctx))

	// The stale session is closed at its day's midnight, break included.
	stale, err := repo.GetByEmployeeAndDate(ctx, "emp-0001", "2026-08-28")
	require.NoError(t, err)
	require.NotNil(t, stale.CheckOut)
	endOfDay := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	assert.True(t, stale.CheckOut.Equal(endOfDay))
	require.Len(t, stale.Breaks, 1)
	require.NotNil(t, stale.Breaks[0].End)
	assert.True(t, stale.Breaks[0].End.Equal(endOfDay))
	assert.False(t, stale.Working())

	// 15h span minus the 12h break that ran to midnight.
	assert.Equal(t, 3*60, stale.WorkedMinutes(endOfDay))

	// Today's open session is untouched.
	open, err := repo.GetByEmployeeAndDate(ctx, "emp-0002", "2026-08-29")
	require.NoError(t, err)
	assert.True(t, open.Working())
}

func TestAutoCloseStaleSessions_NothingToDo(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	jobs := NewAttendanceJobs(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NoError(t, jobs.AutoCloseStaleSessions(context.Background()))
}

func TestScheduler_RunOnce(t *testing.T) {
	scheduler := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ran := 0
	scheduler.AddJob("count", time.Hour, func(context.Context) error {
		ran++
		return nil
	})
	scheduler.RunOnce(context.Background())
	assert.Equal(t, 1, ran)
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ran := make(chan struct{}, 1)
	scheduler.AddJob("once", time.Hour, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
	scheduler.Stop()
}
