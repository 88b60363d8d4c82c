package control

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/worklens/worklens-agent-go/internal/domain/tracking"
	"github.com/worklens/worklens-agent-go/internal/handler/http/response"
	"github.com/worklens/worklens-agent-go/internal/service/tracker"
)

// TrackingHandler drives the engine from the local control surface: it is
// the agent's rendition of the widget's controls.
type TrackingHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	BreakStart(w http.ResponseWriter, r *http.Request)
	BreakEnd(w http.ResponseWriter, r *http.Request)
}

type trackingHandlerImpl struct {
	engine *tracker.Engine
}

func NewTrackingHandler(engine *tracker.Engine) TrackingHandler {
	return &trackingHandlerImpl{engine: engine}
}

// Status implements TrackingHandler.
func (h *trackingHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.engine.Status())
}

// CheckIn implements TrackingHandler.
func (h *trackingHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.CheckIn(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Check-in successful", h.engine.Status())
}

// CheckOut implements TrackingHandler. The confirmation gate lives in the
// request body: the caller asks the user before sending confirm=true.
func (h *trackingHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req tracking.CheckOutRequest
	if r.Body != nil {
		// An empty body means unconfirmed; a malformed one is rejected.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	if err := h.engine.CheckOut(r.Context(), req.Confirm); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Check-out successful", h.engine.Status())
}

// BreakStart implements TrackingHandler.
func (h *trackingHandlerImpl) BreakStart(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.BreakStart(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Break started", h.engine.Status())
}

// BreakEnd implements TrackingHandler.
func (h *trackingHandlerImpl) BreakEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.BreakEnd(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Break ended", h.engine.Status())
}
