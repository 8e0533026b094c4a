package reservation

import (
	"context"
	"log/slog"

	"class-booking/internal/domain/booking"
	"class-booking/internal/domain/slot"
	"class-booking/internal/infra"
	"class-booking/internal/infra/converter"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/shared"
)

// CommitRequest carries everything one submit writes.
type CommitRequest struct {
	Slot     *slot.Slot
	Observed slot.SlotsLeft
	Next     slot.SlotsLeft
	Record   *booking.Record // nil under PolicyDirect
}

type Committer interface {
	Commit(ctx context.Context, req CommitRequest) error
}

// NewCommitter picks the write strategy for the configured policy and checks
// that the backend offers the capabilities it needs.
func NewCommitter(docs shared.DocumentStore, opts Options, logger *slog.Logger) (Committer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	var cas shared.ConditionalUpdater
	if opts.CompareAndSwap {
		c, ok := docs.(shared.ConditionalUpdater)
		if !ok {
			return nil, errs.New("store backend does not support conditional updates")
		}
		cas = c
	}

	base := slotWriter{docs: docs, cas: cas, collection: opts.SlotsCollection}

	switch opts.Policy {
	case PolicyDirect:
		return &directCommitter{slots: base}, nil
	case PolicySplit:
		return &splitCommitter{
			slots:    base,
			docs:     docs,
			bookings: opts.BookingsCollection,
			logger:   logger,
		}, nil
	case PolicyAtomic:
		tx, ok := docs.(shared.Transactor)
		if !ok {
			return nil, errs.New("store backend does not support transactions")
		}
		return &atomicCommitter{
			tx:        tx,
			cas:       opts.CompareAndSwap,
			slotsColl: opts.SlotsCollection,
			bookings:  opts.BookingsCollection,
		}, nil
	}
	return nil, errs.Newf("unknown commit policy %q", opts.Policy)
}

type slotWriter struct {
	docs       shared.DocumentStore
	cas        shared.ConditionalUpdater
	collection string
}

func (w slotWriter) write(ctx context.Context, req CommitRequest) error {
	if w.cas != nil {
		err := w.cas.UpdateFieldsIf(ctx, w.collection, req.Slot.ID(),
			converter.SlotsLeftPatch(req.Observed), converter.SlotsLeftPatch(req.Next))
		return classifyWriteErr(err)
	}
	return classifyWriteErr(w.docs.UpdateFields(ctx, w.collection, req.Slot.ID(), converter.SlotsLeftPatch(req.Next)))
}

type directCommitter struct {
	slots slotWriter
}

func (c *directCommitter) Commit(ctx context.Context, req CommitRequest) error {
	if err := c.slots.write(ctx, req); err != nil {
		return &shared.SubmitError{SlotID: req.Slot.ID(), Stage: shared.StageSlot, Err: err}
	}
	return nil
}

// splitCommitter leaves an orphaned booking record when the slot write fails
// after the insert succeeded. Use PolicyAtomic on backends with transactions.
type splitCommitter struct {
	slots    slotWriter
	docs     shared.DocumentStore
	bookings string
	logger   *slog.Logger
}

func (c *splitCommitter) Commit(ctx context.Context, req CommitRequest) error {
	bookingID, err := c.docs.Insert(ctx, c.bookings, converter.BookingToFields(req.Record))
	if err != nil {
		return &shared.SubmitError{SlotID: req.Slot.ID(), Stage: shared.StageBooking, Err: classifyWriteErr(err)}
	}

	if err := c.slots.write(ctx, req); err != nil {
		c.logger.Warn("orphaned booking record",
			slog.String("booking_id", bookingID),
			slog.String("slot_id", req.Slot.ID()),
			slog.String("error", err.Error()))
		return &shared.SubmitError{SlotID: req.Slot.ID(), Stage: shared.StageSlot, Err: err}
	}
	return nil
}

type atomicCommitter struct {
	tx        shared.Transactor
	cas       bool
	slotsColl string
	bookings  string
}

func (c *atomicCommitter) Commit(ctx context.Context, req CommitRequest) error {
	err := c.tx.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		if _, err := tx.Insert(ctx, c.bookings, converter.BookingToFields(req.Record)); err != nil {
			return err
		}
		if c.cas {
			return tx.UpdateFieldsIf(ctx, c.slotsColl, req.Slot.ID(),
				converter.SlotsLeftPatch(req.Observed), converter.SlotsLeftPatch(req.Next))
		}
		return tx.UpdateFields(ctx, c.slotsColl, req.Slot.ID(), converter.SlotsLeftPatch(req.Next))
	})
	if err != nil {
		return &shared.SubmitError{SlotID: req.Slot.ID(), Stage: shared.StageCommit, Err: classifyWriteErr(err)}
	}
	return nil
}

func classifyWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case infra.IsKind(err, infra.KindPreconditionFailed):
		return errs.Mark(err, errs.ErrStaleSlot)
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrSlotNotFound)
	default:
		return errs.Mark(err, errs.ErrStoreOperationFailed)
	}
}
