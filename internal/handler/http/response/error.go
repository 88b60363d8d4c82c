package response

import (
	"errors"
	"net/http"

	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
	"github.com/worklens/worklens-agent-go/internal/domain/tracking"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrCheckoutOnBreak):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrBreakAlreadyOpen):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNoOpenBreak):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrDayNotFound):
		NotFound(w, err.Error())

	// Tracking domain errors
	case errors.Is(err, tracking.ErrActionInFlight):
		Conflict(w, err.Error())
	case errors.Is(err, tracking.ErrCheckoutNotConfirmed):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, tracking.ErrCheckoutDuringBreak),
		errors.Is(err, tracking.ErrAlreadyCheckedIn),
		errors.Is(err, tracking.ErrNotCheckedIn),
		errors.Is(err, tracking.ErrAlreadyOnBreak),
		errors.Is(err, tracking.ErrNotOnBreak):
		Conflict(w, err.Error())
	case errors.Is(err, tracking.ErrEngineStopped):
		InternalServerError(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
