package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"class-booking/internal/tui"
	"class-booking/internal/usecase/reservation"
	"class-booking/internal/usecase/state"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	opts, err := reservation.OptionsFromConfig(ctx.Config)
	if err != nil {
		return err
	}
	st, ctrl, err := ctx.Booking(opts)
	if err != nil {
		return err
	}

	sub, fetchErr := startSlotSync(ctx.Context(), st, opts.SyncMode, ctx.storeTimeout(), ctx.Logger)
	defer sub.Unsubscribe()

	model := tui.NewModel(ctx.Context(), st, ctrl, opts.SyncMode).WithError(fetchErr)
	p := tea.NewProgram(model, tea.WithAltScreen())
	watch := st.Watch(func(snap state.Snapshot) {
		p.Send(tui.SlotsChangedMsg{Version: snap.Version})
	})
	defer watch.Unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

// startSlotSync fills the state store before the screen opens. A failed
// fetch is returned for display but never stops the caller; the user can
// refetch from the screen. In listen mode a failed subscription falls back
// to a one-off load and the returned subscription is nil.
func startSlotSync(ctx context.Context, st *state.Store, mode reservation.SyncMode, timeout time.Duration, logger *slog.Logger) (*state.Subscription, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if mode == reservation.SyncListen {
		sub, err := st.Subscribe(lctx, nil)
		if err == nil {
			return sub, nil
		}
		logger.Warn("falling back to a one-off load", slog.String("error", err.Error()))
	}
	if err := st.Load(lctx); err != nil {
		logger.Warn("starting without slots", slog.String("error", err.Error()))
		return nil, err
	}
	return nil, nil
}
