package attendance

import (
	"context"
)

// DayRepository defines data access for per-day attendance records. All
// methods are keyed by employee and server-local date string so that one
// employee can never hold more than one record per day.
type DayRepository interface {
	// GetByEmployeeAndDate retrieves the record for an employee on a date.
	// Returns ErrDayNotFound when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (Day, error)

	// Save upserts a day record, replacing any existing record for the same
	// employee and date.
	Save(ctx context.Context, day Day) error

	// ListOpenBefore returns every record with no check-out whose date is
	// strictly before the given date. Used by the stale-session cleanup.
	ListOpenBefore(ctx context.Context, date string) ([]Day, error)
}
