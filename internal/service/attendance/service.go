package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
	"github.com/worklens/worklens-agent-go/internal/domain/tracking"
)

const dateLayout = "2006-01-02"

type AttendanceServiceImpl struct {
	repo attendance.DayRepository
	now  func() time.Time
}

func NewAttendanceService(repo attendance.DayRepository) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// TodaySession implements attendance.Service.
func (s *AttendanceServiceImpl) TodaySession(ctx context.Context, employeeID string) (tracking.TodaySession, error) {
	nowUTC := s.now()
	date := nowUTC.Format(dateLayout)

	day, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrDayNotFound) {
			// No session yet today: an empty, checked-out record.
			return tracking.TodaySession{Date: date}, nil
		}
		return tracking.TodaySession{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	return s.toWire(&day, nowUTC), nil
}

// CheckIn implements attendance.Service.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string) (tracking.TodaySession, error) {
	nowUTC := s.now()
	date := nowUTC.Format(dateLayout)

	day, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil && !errors.Is(err, attendance.ErrDayNotFound) {
		return tracking.TodaySession{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if err == nil {
		// One session per employee per day.
		if day.Working() {
			return tracking.TodaySession{}, attendance.ErrAlreadyCheckedIn
		}
		return tracking.TodaySession{}, attendance.ErrAlreadyCheckedOut
	}

	day = attendance.Day{
		SessionID:  uuid.NewString(),
		EmployeeID: employeeID,
		Date:       date,
		CheckIn:    &nowUTC,
		CreatedAt:  nowUTC,
		UpdatedAt:  nowUTC,
	}
	if err := s.repo.Save(ctx, day); err != nil {
		return tracking.TodaySession{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return s.toWire(&day, nowUTC), nil
}

// CheckOut implements attendance.Service.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string) (tracking.TodaySession, error) {
	nowUTC := s.now()

	day, err := s.openDay(ctx, employeeID, nowUTC)
	if err != nil {
		return tracking.TodaySession{}, err
	}
	if day.OpenBreak() != nil {
		return tracking.TodaySession{}, attendance.ErrCheckoutOnBreak
	}

	day.CheckOut = &nowUTC
	day.UpdatedAt = nowUTC
	if err := s.repo.Save(ctx, day); err != nil {
		return tracking.TodaySession{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	return s.toWire(&day, nowUTC), nil
}

// BreakStart implements attendance.Service.
func (s *AttendanceServiceImpl) BreakStart(ctx context.Context, employeeID string) (tracking.TodaySession, error) {
	nowUTC := s.now()

	day, err := s.openDay(ctx, employeeID, nowUTC)
	if err != nil {
		return tracking.TodaySession{}, err
	}
	if day.OpenBreak() != nil {
		return tracking.TodaySession{}, attendance.ErrBreakAlreadyOpen
	}

	day.Breaks = append(day.Breaks, attendance.Break{Start: nowUTC})
	day.UpdatedAt = nowUTC
	if err := s.repo.Save(ctx, day); err != nil {
		return tracking.TodaySession{}, fmt.Errorf("failed to open break: %w", err)
	}

	return s.toWire(&day, nowUTC), nil
}

// BreakEnd implements attendance.Service.
func (s *AttendanceServiceImpl) BreakEnd(ctx context.Context, employeeID string) (tracking.TodaySession, error) {
	nowUTC := s.now()

	day, err := s.openDay(ctx, employeeID, nowUTC)
	if err != nil {
		return tracking.TodaySession{}, err
	}
	open := day.OpenBreak()
	if open == nil {
		return tracking.TodaySession{}, attendance.ErrNoOpenBreak
	}

	open.End = &nowUTC
	day.UpdatedAt = nowUTC
	if err := s.repo.Save(ctx, day); err != nil {
		return tracking.TodaySession{}, fmt.Errorf("failed to close break: %w", err)
	}

	return s.toWire(&day, nowUTC), nil
}

// openDay loads today's record and requires an open session.
func (s *AttendanceServiceImpl) openDay(ctx context.Context, employeeID string, nowUTC time.Time) (attendance.Day, error) {
	date := nowUTC.Format(dateLayout)

	day, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrDayNotFound) {
			return attendance.Day{}, attendance.ErrNotCheckedIn
		}
		return attendance.Day{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if !day.Working() {
		if day.CheckOut != nil {
			return attendance.Day{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Day{}, attendance.ErrNotCheckedIn
	}

	return day, nil
}

// toWire builds the duck-typed wire record: optional fields are only set in
// the states where they are meaningful.
func (s *AttendanceServiceImpl) toWire(day *attendance.Day, nowUTC time.Time) tracking.TodaySession {
	wire := tracking.TodaySession{
		SessionID:    day.SessionID,
		Working:      day.Working(),
		TotalMinutes: day.WorkedMinutes(nowUTC),
		Date:         day.Date,
	}
	if wire.Working {
		wire.CheckInTime = day.CheckIn
		if b := day.OpenBreak(); b != nil {
			wire.OnBreak = true
			start := b.Start
			wire.BreakStartTime = &start
		}
	}
	return wire
}
