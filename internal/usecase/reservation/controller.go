package reservation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"class-booking/internal/domain/booking"
	"class-booking/internal/domain/slot"
	"class-booking/internal/pkg/clock"
	"class-booking/internal/pkg/errs"
)

type State string

const (
	StateIdle       State = "idle"
	StateSelecting  State = "selecting"
	StateSubmitting State = "submitting"
)

// SlotSource is the part of state.Store the controller reads and updates.
type SlotSource interface {
	Get(id string) (*slot.Slot, bool)
	Slots() []*slot.Slot
	ApplyConfirmedUpdate(id string, newSlotsLeft int) error
}

// PendingSelection is the slot a session is about to book.
type PendingSelection struct {
	SlotID    string
	Observed  slot.SlotsLeft
	Tentative slot.SlotsLeft
	// Optimistic is false after a failed submit so the confirmed count shows again.
	Optimistic bool
}

// Controller drives one booking session: Idle -> Selecting -> Submitting -> Idle.
// Its lock is never held across store I/O.
type Controller struct {
	slots     SlotSource
	committer Committer
	clock     clock.Clock
	opts      Options
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	pending *PendingSelection
	name    string
	lastErr error
}

func NewController(slots SlotSource, committer Committer, clk clock.Clock, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Controller{
		slots:     slots,
		committer: committer,
		clock:     clk,
		opts:      opts,
		logger:    logger,
		state:     StateIdle,
	}
}

// Select makes slotID the pending selection, replacing any previous one.
func (c *Controller) Select(slotID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return errs.ErrSubmitInProgress
	}

	s, ok := c.slots.Get(slotID)
	if !ok {
		return errs.Wrapf(errs.ErrSlotNotFound, "select %s", slotID)
	}
	tentative, err := s.Tentative()
	if err != nil {
		return errs.Wrapf(errs.ErrSlotFull, "select %s", slotID)
	}

	c.pending = &PendingSelection{
		SlotID:     s.ID(),
		Observed:   s.SlotsLeft(),
		Tentative:  tentative,
		Optimistic: true,
	}
	c.state = StateSelecting
	c.lastErr = nil
	c.logger.Debug("slot selected",
		slog.String("slot_id", s.ID()),
		slog.Int("slots_left", s.SlotsLeft().Int()))
	return nil
}

func (c *Controller) SetStudentName(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return errs.ErrSubmitInProgress
	}
	c.name = name
	return nil
}

// Cancel drops the pending selection without touching the store.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return nil
	case StateSubmitting:
		return errs.ErrSubmitInProgress
	}
	c.reset()
	return nil
}

// Submit commits the pending selection. An empty studentName falls back to
// the draft set with SetStudentName.
func (c *Controller) Submit(ctx context.Context, studentName string) error {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return errs.ErrSubmitInProgress
	case StateIdle:
		c.mu.Unlock()
		return errs.ErrNotSelecting
	}

	raw := studentName
	if strings.TrimSpace(raw) == "" {
		raw = c.name
	}
	name, err := booking.NewStudentName(raw)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, booking.ErrEmptyStudentName) {
			return errs.ErrStudentNameRequired
		}
		return errs.Mark(err, errs.ErrDomainValidation)
	}

	pending := c.pending
	current, ok := c.slots.Get(pending.SlotID)
	if !ok {
		pending.Optimistic = false
		c.lastErr = errs.ErrSlotNotFound
		c.mu.Unlock()
		return errs.Wrapf(errs.ErrSlotNotFound, "submit %s", pending.SlotID)
	}
	next, err := current.Tentative()
	if err != nil {
		pending.Observed = current.SlotsLeft()
		pending.Optimistic = false
		c.lastErr = errs.ErrSlotFull
		c.mu.Unlock()
		return errs.Wrapf(errs.ErrSlotFull, "submit %s", pending.SlotID)
	}

	pending.Observed = current.SlotsLeft()
	pending.Tentative = next
	pending.Optimistic = true
	c.name = name.String()
	c.state = StateSubmitting

	req := CommitRequest{Slot: current, Observed: current.SlotsLeft(), Next: next}
	if c.opts.Policy.WritesBookingRecord() {
		req.Record = booking.NewRecord(name, current, c.clock.Now())
	}
	c.mu.Unlock()

	writeCtx, cancel := c.writeContext(ctx)
	err = c.committer.Commit(writeCtx, req)
	cancel()

	if err != nil {
		c.mu.Lock()
		c.state = StateSelecting
		pending.Optimistic = false
		c.lastErr = err
		c.mu.Unlock()

		c.logger.Warn("booking submit failed",
			slog.String("slot_id", current.ID()),
			slog.String("error", err.Error()))
		return err
	}

	// Applied before re-taking the lock: store watchers may call View.
	if c.opts.SyncMode == SyncPoll {
		if err := c.slots.ApplyConfirmedUpdate(current.ID(), next.Int()); err != nil {
			c.logger.Warn("confirmed update not applied",
				slog.String("slot_id", current.ID()),
				slog.String("error", err.Error()))
		}
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()

	c.logger.Info("booking submitted",
		slog.String("slot_id", current.ID()),
		slog.String("day", current.Day()),
		slog.String("time", current.Time()),
		slog.Int("slots_left", next.Int()))
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns a copy of the pending selection, if any.
func (c *Controller) Pending() (PendingSelection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingSelection{}, false
	}
	return *c.pending, true
}

// View renders the session against the current slot list.
func (c *Controller) View() View {
	slots := c.slots.Slots()

	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:       c.state,
		StudentName: c.name,
		Slots:       make([]SlotView, 0, len(slots)),
	}
	if c.lastErr != nil {
		v.LastError = c.lastErr.Error()
	}
	if c.pending != nil {
		v.PendingSlotID = c.pending.SlotID
	}

	for _, s := range slots {
		confirmed := s.SlotsLeft().Int()
		display := confirmed
		selected := c.pending != nil && c.pending.SlotID == s.ID()
		if selected && c.pending.Optimistic {
			display = min(c.pending.Tentative.Int(), confirmed)
		}
		display = max(display, 0)

		v.Slots = append(v.Slots, SlotView{
			ID:               s.ID(),
			Day:              s.Day(),
			Time:             s.Time(),
			SlotsLeft:        confirmed,
			DisplaySlotsLeft: display,
			Bookable:         display > 0,
			Selected:         selected,
		})
		if selected {
			v.CanSubmit = c.state == StateSelecting && confirmed > 0
		}
	}
	return v
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.pending = nil
	c.name = ""
	c.lastErr = nil
}

// writeContext keeps the caller's values but not its cancellation: a submit
// that started writing runs until it completes, fails or hits WriteTimeout.
func (c *Controller) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.opts.WriteTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.WriteTimeout)
}
