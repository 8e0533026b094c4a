package bootstrap

import (
	"context"
	"log/slog"

	"class-booking/internal/infra/docstore"
	"class-booking/internal/pkg/config"
	"class-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewDocumentStore,
		func(b docstore.Backend) shared.DocumentStore {
			return b
		},
	),
)

func NewDocumentStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (docstore.Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout*3)
	defer cancel()

	backend, err := docstore.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("document store ready", slog.String("driver", cfg.Store.Driver))

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return backend.Close()
		},
	})
	return backend, nil
}
