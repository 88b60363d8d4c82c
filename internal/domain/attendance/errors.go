package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrCheckoutOnBreak   = errors.New("end your break before checking out")

	// Break errors
	ErrBreakAlreadyOpen = errors.New("a break is already in progress")
	ErrNoOpenBreak      = errors.New("no break is in progress")

	// General errors
	ErrDayNotFound = errors.New("attendance record not found")
)
