package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
)

const dateLayout = "2006-01-02"

// AttendanceJobs closes sessions that were left open past their day: an
// agent that crashed or lost power never sends the check-out, so the record
// stays open forever unless the server closes it.
type AttendanceJobs struct {
	repo   attendance.DayRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewAttendanceJobs(repo attendance.DayRepository, logger *slog.Logger) *AttendanceJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceJobs{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", time.Hour, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions closes every open session from a previous day at
// that day's midnight. An open break ends at the same instant, so the break
// never bleeds into the closed total.
func (j *AttendanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	today := j.now().Format(dateLayout)

	stale, err := j.repo.ListOpenBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list stale sessions: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	closed := 0
	for _, day := range stale {
		dayStart, err := time.Parse(dateLayout, day.Date)
		if err != nil {
			j.logger.Error("stale session has unparseable date",
				"session_id", day.SessionID, "date", day.Date)
			continue
		}
		endOfDay := dayStart.Add(24 * time.Hour)

		if open := day.OpenBreak(); open != nil {
			open.End = &endOfDay
		}
		day.CheckOut = &endOfDay
		day.UpdatedAt = j.now()

		if err := j.repo.Save(ctx, day); err != nil {
			j.logger.Error("failed to auto-close stale session",
				"session_id", day.SessionID,
				"employee_id", day.EmployeeID,
				"error", err)
			continue
		}
		closed++
	}

	j.logger.Info("auto-closed stale sessions", "count", closed)
	return nil
}
