package cli

import (
	"fmt"

	"class-booking/internal/usecase/reservation"
)

// BookCmd books one seat without the interactive screen.
type BookCmd struct {
	Slot string `help:"Slot ID to book." required:""`
	Name string `help:"Student name." required:""`
}

func (c *BookCmd) Run(ctx *Context) error {
	opts, err := reservation.OptionsFromConfig(ctx.Config)
	if err != nil {
		return err
	}
	// A one-shot booking never listens for changes.
	opts.SyncMode = reservation.SyncPoll

	st, ctrl, err := ctx.Booking(opts)
	if err != nil {
		return err
	}
	lctx, cancel := ctx.Timeout()
	defer cancel()
	if err := st.Load(lctx); err != nil {
		return err
	}

	if err := ctrl.Select(c.Slot); err != nil {
		return err
	}
	if err := ctrl.Submit(ctx.Context(), c.Name); err != nil {
		return err
	}

	if s, ok := st.Get(c.Slot); ok {
		fmt.Printf("Booked %s %s for %s (%d left)\n", s.Day(), s.Time(), c.Name, s.SlotsLeft().Int())
		return nil
	}
	fmt.Printf("Booked slot %s for %s\n", c.Slot, c.Name)
	return nil
}
