package components

import (
	"context"
	"log/slog"

	"class-booking/internal/pkg/clock"
	"class-booking/internal/pkg/config"
	"class-booking/internal/usecase/catalog"
	"class-booking/internal/usecase/reservation"
	"class-booking/internal/usecase/session"
	"class-booking/internal/usecase/shared"
	"class-booking/internal/usecase/state"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		reservation.OptionsFromConfig,
		NewStateStore,
		fx.Annotate(
			func(s *state.Store) *state.Store { return s },
			fx.As(new(reservation.SlotSource)),
		),
		NewCommitter,
		NewSessionRegistry,
		NewCatalog,
	),
)

// NewStateStore loads the slot list on start. In listen mode it stays
// subscribed until stop; a failed fetch is logged and the server still starts.
func NewStateStore(lc fx.Lifecycle, docs shared.DocumentStore, cfg config.Config, logger *slog.Logger) *state.Store {
	store := state.NewStore(docs, cfg.Store.SlotsCollection, logger)
	var sub *state.Subscription

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
			defer cancel()

			if cfg.Booking.SyncMode == config.SyncListen {
				s, err := store.Subscribe(ctx, nil)
				if err == nil {
					sub = s
					return nil
				}
				logger.Warn("falling back to a one-off load", slog.String("error", err.Error()))
			}
			_ = store.Load(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			sub.Unsubscribe()
			return nil
		},
	})
	return store
}

func NewCommitter(docs shared.DocumentStore, opts reservation.Options, logger *slog.Logger) (reservation.Committer, error) {
	return reservation.NewCommitter(docs, opts, logger)
}

func NewSessionRegistry(
	lc fx.Lifecycle,
	slots reservation.SlotSource,
	committer reservation.Committer,
	opts reservation.Options,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) session.Registry {
	registry := session.NewRegistry(slots, committer, opts, cfg.Session.IdleTTL, clk, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				registry.Run(ctx, cfg.Session.SweepInterval)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
	return registry
}

func NewCatalog(docs shared.DocumentStore, cfg config.Config, logger *slog.Logger) catalog.Catalog {
	return catalog.NewCatalog(docs, cfg.Store.SlotsCollection, cfg.Store.BookingsCollection, logger)
}
