package tracking

import "errors"

// Tracking domain errors
var (
	// Transition guard errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in")
	ErrNotCheckedIn        = errors.New("you have not checked in yet")
	ErrAlreadyOnBreak      = errors.New("you are already on a break")
	ErrNotOnBreak          = errors.New("you are not on a break")
	ErrCheckoutDuringBreak = errors.New("end your break before checking out")

	// Dispatch errors
	ErrActionInFlight       = errors.New("a request for this control is already in flight")
	ErrCheckoutNotConfirmed = errors.New("check-out requires explicit confirmation")

	// General errors
	ErrMalformedSession = errors.New("malformed session record")
	ErrEngineStopped    = errors.New("tracking engine is not running")
)
