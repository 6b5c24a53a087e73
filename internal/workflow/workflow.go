package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/ledger"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/numberer"
	"ms-boxoffice/internal/persistence"
	"ms-boxoffice/internal/recorder"
	"ms-boxoffice/internal/store"
)

var (
	// ErrValidation blocks submission when a non-privileged request is
	// missing a guest name or asks for a nonsensical quantity. The state
	// machine does not move.
	ErrValidation = errors.New("validation failed")

	// ErrWrongState is returned for a transition fired outside its source
	// state, e.g. approving when nothing is pending.
	ErrWrongState = errors.New("transition not allowed in current state")
)

// State is the position of the single in-flight booking request.
type State string

const (
	StateIdle            State = "idle"
	StateSubmitting      State = "submitting"
	StatePendingApproval State = "pending_approval"
	StateApproving       State = "approving"
	StateIssued          State = "issued"
)

// Workflow coordinates a booking request from submission through optional
// human approval to ticket materialization. It is the sole writer of the
// ledger and the store; its mutex makes reserve-then-mint one atomic step,
// so no allocation can observe a sold count whose ticket is not yet minted.
type Workflow struct {
	mu      sync.Mutex
	state   State
	pending *models.BookingRequest
	current *models.Ticket

	ledger  *ledger.Ledger
	store   *store.Store
	persist persistence.Store
	rec     recorder.Recorder

	event       config.EventConfig
	reviewDelay time.Duration
	logger      *logger.Logger
}

func New(led *ledger.Ledger, st *store.Store, persist persistence.Store, rec recorder.Recorder, event config.EventConfig, reviewDelay time.Duration, log *logger.Logger) *Workflow {
	if rec == nil {
		rec = recorder.Noop{}
	}
	return &Workflow{
		state:       StateIdle,
		ledger:      led,
		store:       st,
		persist:     persist,
		rec:         rec,
		event:       event,
		reviewDelay: reviewDelay,
		logger:      log,
	}
}

// Submit starts a booking cycle. Privileged callers (operator direct issue)
// are exempt from the name requirement and skip approval entirely: their
// ticket is materialized before Submit returns. Non-privileged requests sit
// through the review delay and land in PendingApproval; no state is mutated
// during the wait, so a reset in the meantime abandons the request with no
// side effects.
func (w *Workflow) Submit(ctx context.Context, req models.BookingRequest, privileged bool) (State, *models.Ticket, error) {
	w.mu.Lock()

	if w.state != StateIdle {
		state := w.state
		w.mu.Unlock()
		return state, nil, fmt.Errorf("%w: submit while %s", ErrWrongState, state)
	}

	if req.Quantity < 1 {
		w.mu.Unlock()
		return StateIdle, nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if req.GuestName == "" {
		if !privileged {
			w.mu.Unlock()
			return StateIdle, nil, fmt.Errorf("%w: guest name is required", ErrValidation)
		}
		req.GuestName = w.event.PlaceholderGuest
	}
	if w.ledger.Remaining() < req.Quantity {
		w.mu.Unlock()
		return StateIdle, nil, fmt.Errorf("%w: %d requested, %d remaining", ledger.ErrCapacityExceeded, req.Quantity, w.ledger.Remaining())
	}

	w.state = StateSubmitting
	w.pending = &req

	if privileged {
		ticket, err := w.allocate(ctx, req)
		if err != nil {
			w.state = StateIdle
			w.pending = nil
			w.mu.Unlock()
			return StateIdle, nil, err
		}
		w.state = StateIssued
		w.current = ticket
		w.pending = nil
		w.mu.Unlock()
		w.logAllocation("DIRECT_ISSUE", ticket.ID, fmt.Sprintf("issued %d pass(es) for %s", ticket.Quantity, ticket.GuestName))
		w.dispatchRecording(*ticket)
		return StateIssued, ticket, nil
	}

	w.mu.Unlock()

	// Models the latency of the human-review step.
	if w.reviewDelay > 0 {
		select {
		case <-time.After(w.reviewDelay):
		case <-ctx.Done():
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSubmitting {
		// Abandoned while waiting; nothing was reserved.
		return w.state, nil, nil
	}
	w.state = StatePendingApproval
	return StatePendingApproval, nil, nil
}

// Approve materializes the pending request: reserve, mint, append, persist —
// all inside the mutex region — then notifies the external recorder without
// blocking the transition. A recorder failure is logged and discarded; the
// local ledger is the source of truth and the mirror may lag or fail
// independently.
func (w *Workflow) Approve(ctx context.Context) (*models.Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StatePendingApproval {
		return nil, fmt.Errorf("%w: approve while %s", ErrWrongState, w.state)
	}
	w.state = StateApproving

	req := *w.pending
	ticket, err := w.allocate(ctx, req)
	if err != nil {
		// Capacity may have been consumed by a direct issue while this
		// request was pending. Leave it approvable; the guest can reset.
		w.state = StatePendingApproval
		return nil, err
	}

	w.state = StateIssued
	w.current = ticket
	w.pending = nil

	w.logAllocation("APPROVE", ticket.ID, fmt.Sprintf("issued %d pass(es) for %s", ticket.Quantity, ticket.GuestName))
	w.dispatchRecording(*ticket)
	return ticket, nil
}

// allocate is the reserve-then-mint critical section. Callers hold w.mu.
func (w *Workflow) allocate(ctx context.Context, req models.BookingRequest) (*models.Ticket, error) {
	soldBefore := w.ledger.Sold()
	if err := w.ledger.Reserve(req.Quantity); err != nil {
		return nil, err
	}

	email := req.Email
	if email == "" {
		email = "No Email Provided"
	}

	ticket := models.Ticket{
		ID:          numberer.MintID(w.event.Code, w.ledger.Sold()),
		NumberRange: numberer.NextRange(soldBefore, req.Quantity),
		GuestName:   req.GuestName,
		Email:       email,
		Quantity:    req.Quantity,
		UnitPrice:   w.event.UnitPrice,
		TotalPrice:  w.event.UnitPrice * float64(req.Quantity),
		EventDate:   w.event.Date,
		EventTime:   w.event.Time,
		EventVenue:  w.event.Venue,
		IssuedAt:    time.Now(),
	}

	w.store.Append(ticket)
	w.saveSnapshot(ctx)
	return &ticket, nil
}

// saveSnapshot mirrors ledger and store to the persistence adapter. The
// mirror is best-effort: a write failure is logged, never propagated, so a
// flaky store cannot roll back an allocation that already happened.
func (w *Workflow) saveSnapshot(ctx context.Context) {
	snap := persistence.Snapshot{
		Max:     w.ledger.Max(),
		Sold:    w.ledger.Sold(),
		History: w.store.FindAll(),
	}
	if err := persistence.SaveSnapshot(ctx, w.persist, snap); err != nil {
		if w.logger != nil {
			w.logger.Error("PERSIST", fmt.Sprintf("failed to mirror state: %v", err))
		}
	}
}

func (w *Workflow) dispatchRecording(ticket models.Ticket) {
	payload := models.RecordingPayload{
		Name:        ticket.GuestName,
		Email:       ticket.Email,
		Quantity:    ticket.Quantity,
		TicketID:    ticket.ID,
		NumberRange: ticket.NumberRange,
		TotalPrice:  ticket.TotalPrice,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := w.rec.Record(ctx, payload); err != nil {
			if w.logger != nil {
				w.logger.Warn("RECORDER", fmt.Sprintf("best-effort recording failed for %s: %v", ticket.ID, err))
			}
			return
		}
		if w.logger != nil {
			w.logger.LogRecorder("RECORDED", ticket.ID, "payload delivered")
		}
	}()
}

// Reset clears the in-flight request and returns to Idle. Ledger and store
// are untouched: a pending request holds no capacity, and issued tickets
// are immutable.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateIdle
	w.pending = nil
	w.current = nil
}

// ViewExisting re-displays a previously stored ticket without allocating
// capacity. Read-only replay: ledger and store are not mutated.
func (w *Workflow) ViewExisting(ticketID string) (*models.Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ticket, err := w.store.FindByID(ticketID)
	if err != nil {
		return nil, err
	}
	w.current = ticket
	w.state = StateIssued
	return ticket, nil
}

// SetMax is the privileged capacity adjustment. Lowering below the sold
// count is tolerated; already-issued tickets stay valid.
func (w *Workflow) SetMax(ctx context.Context, newMax int) models.Capacity {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ledger.SetMax(newMax)
	w.saveSnapshot(ctx)
	return models.Capacity{Max: w.ledger.Max(), Sold: w.ledger.Sold()}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) CurrentTicket() *models.Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Workflow) Capacity() models.Capacity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return models.Capacity{Max: w.ledger.Max(), Sold: w.ledger.Sold()}
}

func (w *Workflow) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Remaining()
}

// Tickets returns the full issued history, most recent first.
func (w *Workflow) Tickets() []models.Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.FindAll()
}

// FindTicket looks a ticket up without touching the display state.
func (w *Workflow) FindTicket(ticketID string) (*models.Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.FindByID(ticketID)
}

func (w *Workflow) logAllocation(action, ticketID, message string) {
	if w.logger != nil {
		w.logger.LogAllocation(action, ticketID, message)
	}
}
