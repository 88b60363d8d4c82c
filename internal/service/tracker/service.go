package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/worklens/worklens-agent-go/internal/domain/tracking"
	"github.com/worklens/worklens-agent-go/internal/pkg/backend"
	"github.com/worklens/worklens-agent-go/internal/pkg/companion"
)

// Backend is the slice of the attendance API the engine depends on. The four
// actions return only success or failure; the authoritative record always
// comes from TodaySession.
type Backend interface {
	TodaySession(ctx context.Context) (tracking.TodaySession, error)
	CheckIn(ctx context.Context) error
	CheckOut(ctx context.Context) error
	BreakStart(ctx context.Context) error
	BreakEnd(ctx context.Context) error
}

// Heartbeater is the realtime channel's liveness signal.
type Heartbeater interface {
	Heartbeat() error
}

// Options contains runtime options for the engine.
type Options struct {
	TickInterval      time.Duration
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

// Engine is the attendance timer reconciliation engine. It keeps a locally
// ticking clock consistent with the server-side session record across three
// channels: the periodic poll, the local tick, and post-action re-syncs.
// The server stays the single source of truth; every reconcile fully rebuilds
// the displayed state from the fetched record.
type Engine struct {
	mu        sync.Mutex
	backend   Backend
	socket    Heartbeater
	companion companion.Notifier
	logger    *slog.Logger
	options   Options
	token     string

	record     tracking.SessionRecord
	haveRecord bool

	elapsedWork  int
	elapsedBreak int

	// In-flight guards. Check-in and check-out share one control in the
	// widget, break start/end share the other.
	actionInFlight      bool
	breakActionInFlight bool

	// startedSeq is the sequence number of the most recently started
	// reconcile; a finished reconcile only applies if no newer one started
	// while it was in flight.
	startedSeq uint64

	events  []chan Event
	stopCh  chan struct{}
	running bool

	nowFn func() time.Time
}

func New(b Backend, comp companion.Notifier, socket Heartbeater, token string, options Options, logger *slog.Logger) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.HeartbeatInterval <= 0 {
		options.HeartbeatInterval = 30 * time.Second
	}
	if comp == nil {
		comp = companion.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		backend:   b,
		socket:    socket,
		companion: comp,
		logger:    logger,
		options:   options,
		token:     token,
		record:    tracking.SessionRecord{Phase: tracking.PhaseCheckedOut},
		stopCh:    make(chan struct{}),
		nowFn:     time.Now,
	}
}

// Subscribe registers a notification channel. Events mirror what the widget
// surfaces as toasts: one per action outcome and one per sync failure.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Start performs the mount-time reconcile and launches the run loop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()

	if err := e.Reconcile(ctx); err != nil {
		// Not fatal: the poll or the next action will retry.
		e.logger.Warn("initial sync failed", "error", err)
	}

	go e.run(ctx)
	return nil
}

// Stop tears the engine down: the run loop exits, both timers stop, and all
// subscriber channels close. In-flight network calls may still complete but
// their results are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (e *Engine) run(ctx context.Context) {
	tick := time.NewTicker(e.options.TickInterval)
	defer tick.Stop()

	heartbeat := time.NewTicker(e.options.HeartbeatInterval)
	defer heartbeat.Stop()

	var poll <-chan time.Time
	if e.options.PollInterval > 0 {
		pollTicker := time.NewTicker(e.options.PollInterval)
		defer pollTicker.Stop()
		poll = pollTicker.C
	}

	for {
		select {
		case <-e.stopCh:
			return
		case <-ctx.Done():
			e.Stop()
			return
		case <-tick.C:
			e.tick()
		case <-heartbeat.C:
			e.emitHeartbeat()
		case <-poll:
			go func() {
				if err := e.Reconcile(ctx); err != nil {
					e.logger.Warn("poll sync failed", "error", err)
				}
			}()
		}
	}
}

// tick advances whichever counter the current phase owns. At most one of the
// two counters moves per tick.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	switch e.record.Phase {
	case tracking.PhaseWorking:
		e.elapsedWork++
	case tracking.PhaseOnBreak:
		e.elapsedBreak++
	}
}

func (e *Engine) emitHeartbeat() {
	if e.socket == nil {
		return
	}
	if err := e.socket.Heartbeat(); err != nil {
		e.logger.Debug("heartbeat failed", "error", err)
	}
}

// Reconcile fetches the authoritative record and rebuilds the displayed
// state from it. A fetch failure keeps the previous state; a response that
// was overtaken by a newer reconcile is discarded.
func (e *Engine) Reconcile(ctx context.Context) error {
	e.mu.Lock()
	e.startedSeq++
	seq := e.startedSeq
	e.mu.Unlock()

	wire, err := e.backend.TodaySession(ctx)
	if err != nil {
		e.publish(Event{Kind: EventWarning, Message: "Network synchronization failed"})
		return err
	}

	record, err := tracking.NewSessionRecord(wire)
	if err != nil {
		e.publish(Event{Kind: EventWarning, Message: "Network synchronization failed"})
		return err
	}

	e.mu.Lock()
	if !e.running {
		// Torn down while the fetch was in flight; never mutate after Stop.
		e.mu.Unlock()
		return nil
	}
	if seq != e.startedSeq {
		// A newer reconcile started after this one; last response wins.
		e.mu.Unlock()
		return nil
	}
	e.apply(record)
	e.mu.Unlock()

	e.syncCompanion(record)
	return nil
}

// apply reseeds both counters from the record. Callers hold the lock.
//
// The work counter carries over when the fetched record continues the same
// open session: reseeding it from now-checkInTime would re-add past break
// time and lose the freeze/resume continuity. A session seen for the first
// time (cold mount, fresh check-in) is seeded from the wall clock instead.
func (e *Engine) apply(record tracking.SessionRecord) {
	now := e.nowFn()
	sameSession := e.haveRecord && e.record.Working() && record.Working() &&
		record.SessionID != "" && e.record.SessionID == record.SessionID

	switch record.Phase {
	case tracking.PhaseWorking:
		if !sameSession {
			e.elapsedWork = record.ElapsedWorkSeconds(now)
		}
		e.elapsedBreak = 0
	case tracking.PhaseOnBreak:
		// The work counter is frozen here, never live.
		if !sameSession {
			e.elapsedWork = record.TotalMinutes * 60
		}
		e.elapsedBreak = record.ElapsedBreakSeconds(now)
	case tracking.PhaseCheckedOut:
		// Pin to the server total so the checked-out figure matches the
		// authoritative count, not a possibly drifted local one.
		e.elapsedWork = record.TotalMinutes * 60
		e.elapsedBreak = 0
	}

	e.record = record
	e.haveRecord = true
}

// syncCompanion mirrors the session state to the local companion process.
func (e *Engine) syncCompanion(record tracking.SessionRecord) {
	if record.Working() {
		e.companion.SetToken(e.token)
		e.companion.StartMonitoring(record.SessionID)
	} else {
		e.companion.StopMonitoring()
	}
}

// CheckIn opens today's session: optimistic start, remote call, reconcile.
func (e *Engine) CheckIn(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return tracking.ErrEngineStopped
	}
	if e.actionInFlight {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: "Check-in already in progress"})
		return tracking.ErrActionInFlight
	}
	if err := e.record.GuardCheckIn(); err != nil {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: err.Error()})
		return err
	}
	e.actionInFlight = true
	// Optimistic: the timer starts from zero immediately.
	e.record = tracking.SessionRecord{
		Phase:        tracking.PhaseWorking,
		CheckInTime:  e.nowFn(),
		TotalMinutes: e.record.TotalMinutes,
		Date:         e.record.Date,
	}
	e.haveRecord = true
	e.elapsedWork = 0
	e.elapsedBreak = 0
	e.mu.Unlock()

	err := e.backend.CheckIn(ctx)
	e.finishAction(ctx, &e.actionInFlight, err, "Check-in successful", "Check-in failed")
	return err
}

// CheckOut closes today's session. It is refused without the caller's
// explicit confirmation and refused outright while a break is open: there is
// no transition from OnBreak to CheckedOut, so no request is sent.
func (e *Engine) CheckOut(ctx context.Context, confirmed bool) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return tracking.ErrEngineStopped
	}
	if e.actionInFlight {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: "Check-out already in progress"})
		return tracking.ErrActionInFlight
	}
	if err := e.record.GuardCheckOut(); err != nil {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: err.Error()})
		return err
	}
	if !confirmed {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: "Check-out requires confirmation"})
		return tracking.ErrCheckoutNotConfirmed
	}
	e.actionInFlight = true
	// Optimistic: pin to the last known authoritative total.
	e.record = tracking.SessionRecord{
		Phase:        tracking.PhaseCheckedOut,
		TotalMinutes: e.record.TotalMinutes,
		SessionID:    e.record.SessionID,
		Date:         e.record.Date,
	}
	e.elapsedWork = e.record.TotalMinutes * 60
	e.elapsedBreak = 0
	e.mu.Unlock()

	err := e.backend.CheckOut(ctx)
	e.finishAction(ctx, &e.actionInFlight, err, "Check-out successful", "Check-out failed")
	return err
}

// BreakStart pauses work accrual: the work counter freezes and the break
// counter starts from zero before the server confirms.
func (e *Engine) BreakStart(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return tracking.ErrEngineStopped
	}
	if e.breakActionInFlight {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: "Break request already in progress"})
		return tracking.ErrActionInFlight
	}
	if err := e.record.GuardBreakStart(); err != nil {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: err.Error()})
		return err
	}
	e.breakActionInFlight = true
	rec := e.record
	rec.Phase = tracking.PhaseOnBreak
	rec.BreakStartTime = e.nowFn()
	e.record = rec
	e.elapsedBreak = 0
	e.mu.Unlock()

	err := e.backend.BreakStart(ctx)
	e.finishAction(ctx, &e.breakActionInFlight, err, "Break started, timer paused", "Could not start break")
	return err
}

// BreakEnd resumes work accrual: the break counter stops and zeroes, the
// work counter continues from where it froze.
func (e *Engine) BreakEnd(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return tracking.ErrEngineStopped
	}
	if e.breakActionInFlight {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: "Break request already in progress"})
		return tracking.ErrActionInFlight
	}
	if err := e.record.GuardBreakEnd(); err != nil {
		e.mu.Unlock()
		e.publish(Event{Kind: EventWarning, Message: err.Error()})
		return err
	}
	e.breakActionInFlight = true
	rec := e.record
	rec.Phase = tracking.PhaseWorking
	rec.BreakStartTime = time.Time{}
	e.record = rec
	e.elapsedBreak = 0
	e.mu.Unlock()

	err := e.backend.BreakEnd(ctx)
	e.finishAction(ctx, &e.breakActionInFlight, err, "Break ended, back to work", "Could not end break")
	return err
}

// finishAction clears the in-flight guard on both paths and replaces the
// optimistic guess with the authoritative record. The reconcile also runs on
// failure so a rejected action can never leave the display drifted ahead of
// the server until some unrelated poll corrects it.
func (e *Engine) finishAction(ctx context.Context, guard *bool, actionErr error, successMsg, failureMsg string) {
	if actionErr != nil {
		message := failureMsg
		var apiErr *backend.APIError
		if errors.As(actionErr, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		e.publish(Event{Kind: EventError, Message: message})
	} else {
		e.publish(Event{Kind: EventSuccess, Message: successMsg})
	}

	if err := e.Reconcile(ctx); err != nil {
		e.logger.Warn("post-action sync failed", "error", err)
	}

	e.mu.Lock()
	*guard = false
	e.mu.Unlock()
}

// Status returns the display snapshot derived from the latest record plus
// local ticks.
func (e *Engine) Status() tracking.StatusResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	return tracking.StatusResponse{
		Phase:               string(e.record.Phase),
		SessionID:           e.record.SessionID,
		Date:                e.record.Date,
		ElapsedWorkSeconds:  e.elapsedWork,
		ElapsedBreakSeconds: e.elapsedBreak,
		WorkClock:           tracking.FormatClock(e.elapsedWork),
		BreakClock:          tracking.FormatClock(e.elapsedBreak),
		TotalMinutes:        e.record.TotalMinutes,
		TotalLabel:          tracking.FormatMinutes(e.record.TotalMinutes),
		ActionInFlight:      e.actionInFlight,
		BreakActionInFlight: e.breakActionInFlight,
	}
}

// publish holds the lock through the non-blocking sends: Stop nils the
// subscriber list and closes the channels under the same lock, so a send
// can never hit a closed channel.
func (e *Engine) publish(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ch := range e.events {
		select {
		case ch <- event:
		default:
			// Slow subscribers drop notifications rather than block the engine.
		}
	}
}
