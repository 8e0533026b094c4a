package reservation

import (
	"time"

	"class-booking/internal/pkg/config"
	"class-booking/internal/pkg/errs"
)

type Policy string

const (
	// PolicyDirect writes the decremented count straight to the slot.
	PolicyDirect Policy = config.PolicyDirect
	// PolicySplit inserts a booking record, then decrements the slot. Not atomic.
	PolicySplit Policy = config.PolicySplit
	// PolicyAtomic performs both writes of PolicySplit in one store transaction.
	PolicyAtomic Policy = config.PolicyAtomic
)

func (p Policy) WritesBookingRecord() bool {
	return p == PolicySplit || p == PolicyAtomic
}

type SyncMode string

const (
	// SyncListen relies on the next push event to refresh local state.
	SyncListen SyncMode = config.SyncListen
	// SyncPoll applies the confirmed count locally after a successful write.
	SyncPoll SyncMode = config.SyncPoll
)

type Options struct {
	Policy             Policy
	SyncMode           SyncMode
	CompareAndSwap     bool
	SlotsCollection    string
	BookingsCollection string
	WriteTimeout       time.Duration
}

func OptionsFromConfig(cfg config.Config) (Options, error) {
	if err := cfg.Booking.Validate(); err != nil {
		return Options{}, err
	}
	return Options{
		Policy:             Policy(cfg.Booking.Policy),
		SyncMode:           SyncMode(cfg.Booking.SyncMode),
		CompareAndSwap:     cfg.Booking.CompareAndSwap,
		SlotsCollection:    cfg.Store.SlotsCollection,
		BookingsCollection: cfg.Store.BookingsCollection,
		WriteTimeout:       cfg.Store.Timeout,
	}, nil
}

func (o Options) validate() error {
	switch o.Policy {
	case PolicyDirect, PolicySplit, PolicyAtomic:
	default:
		return errs.Newf("unknown commit policy %q", o.Policy)
	}
	switch o.SyncMode {
	case SyncListen, SyncPoll:
	default:
		return errs.Newf("unknown sync mode %q", o.SyncMode)
	}
	if o.SlotsCollection == "" {
		return errs.New("slots collection is required")
	}
	if o.Policy.WritesBookingRecord() && o.BookingsCollection == "" {
		return errs.Newf("bookings collection is required for policy %q", o.Policy)
	}
	return nil
}
