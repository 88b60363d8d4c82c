package memory

import (
	"context"
	"sync"

	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
)

// dayKey uniquely identifies one employee-day.
type dayKey struct {
	employeeID string
	date       string
}

// AttendanceRepository is an in-memory attendance.DayRepository used by the
// simulator when no database is configured, and by the service tests.
type AttendanceRepository struct {
	mu   sync.RWMutex
	days map[dayKey]attendance.Day
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		days: make(map[dayKey]attendance.Day),
	}
}

// GetByEmployeeAndDate implements attendance.DayRepository.
func (r *AttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID, date string) (attendance.Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day, ok := r.days[dayKey{employeeID: employeeID, date: date}]
	if !ok {
		return attendance.Day{}, attendance.ErrDayNotFound
	}
	return cloneDay(day), nil
}

// Save implements attendance.DayRepository.
func (r *AttendanceRepository) Save(_ context.Context, day attendance.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.days[dayKey{employeeID: day.EmployeeID, date: day.Date}] = cloneDay(day)
	return nil
}

// ListOpenBefore implements attendance.DayRepository.
func (r *AttendanceRepository) ListOpenBefore(_ context.Context, date string) ([]attendance.Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []attendance.Day
	for key, day := range r.days {
		if key.date < date && day.CheckIn != nil && day.CheckOut == nil {
			out = append(out, cloneDay(day))
		}
	}
	return out, nil
}

// cloneDay copies the record so callers never share break slices.
func cloneDay(day attendance.Day) attendance.Day {
	out := day
	out.Breaks = make([]attendance.Break, len(day.Breaks))
	copy(out.Breaks, day.Breaks)
	return out
}
