package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
	"github.com/worklens/worklens-agent-go/internal/handler/http/response"
	"github.com/worklens/worklens-agent-go/internal/realtime"
)

type AttendanceHandler interface {
	Today(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	BreakStart(w http.ResponseWriter, r *http.Request)
	BreakEnd(w http.ResponseWriter, r *http.Request)
	Presence(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	hub               *realtime.Hub
}

func NewAttendanceHandler(attendanceService attendance.Service, hub *realtime.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		hub:               hub,
	}
}

// employeeIDFromContext pulls the authenticated employee out of the verified
// token claims.
func employeeIDFromContext(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", fmt.Errorf("employee_id claim is missing or invalid")
	}
	return employeeID, nil
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	session, err := h.attendanceService.TodaySession(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, session)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	session, err := h.attendanceService.CheckIn(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-in successful", session)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	session, err := h.attendanceService.CheckOut(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out successful", session)
}

// BreakStart implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakStart(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	session, err := h.attendanceService.BreakStart(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", session)
}

// BreakEnd implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakEnd(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromContext(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	session, err := h.attendanceService.BreakEnd(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", session)
}

// Presence implements AttendanceHandler. It exposes the last heartbeat per
// employee so presence behavior is observable in development.
func (h *attendanceHandlerImpl) Presence(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.hub.Presence())
}
