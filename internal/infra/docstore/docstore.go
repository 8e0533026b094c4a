// Package docstore opens the document store backend named in the configuration.
package docstore

import (
	"context"
	"log/slog"

	"class-booking/internal/infra/db"
	"class-booking/internal/infra/docstore/memory"
	"class-booking/internal/infra/docstore/postgres"
	"class-booking/internal/infra/docstore/redisstore"
	"class-booking/internal/infra/docstore/sqlite"
	"class-booking/internal/infra/migration"
	"class-booking/internal/pkg/config"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/shared"
	"class-booking/migrations"
)

// Backend is a document store that owns its connections.
type Backend interface {
	shared.DocumentStore
	shared.Closer
}

type closingBackend struct {
	Backend
	release func()
}

func (b *closingBackend) Close() error {
	err := b.Backend.Close()
	if b.release != nil {
		b.release()
	}
	return err
}

// The optional capabilities must stay visible through the wrapper.
type closingTxBackend struct {
	*closingBackend
	shared.ConditionalUpdater
	shared.Transactor
}

func wrap(inner Backend, release func()) Backend {
	cb := &closingBackend{Backend: inner, release: release}
	cu, okCU := inner.(shared.ConditionalUpdater)
	tx, okTx := inner.(shared.Transactor)
	if okCU && okTx {
		return &closingTxBackend{closingBackend: cb, ConditionalUpdater: cu, Transactor: tx}
	}
	return cb
}

func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Backend, error) {
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memory.New(logger), nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.DSN, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverPostgres:
		pool, cleanup, err := db.ConnectPostgres(ctx, cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		return wrap(postgres.New(pool, logger), cleanup), nil

	case config.DriverRedis:
		client, cleanup, err := db.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return wrap(redisstore.New(client, logger), cleanup), nil
	}
	return nil, errs.Newf("unknown store driver %q", cfg.Store.Driver)
}

// Migrate applies the SQL schema for drivers that have one.
func Migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) (int, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, cleanup, err := db.ConnectPostgres(ctx, cfg.DB, logger)
		if err != nil {
			return 0, err
		}
		defer cleanup()
		return migration.NewRunner(migration.PgxConn(pool), migrations.FS, migrations.PostgresDir, logger).Apply(ctx)
	case config.DriverSQLite:
		// Open applies the schema itself.
		store, err := sqlite.Open(ctx, cfg.Store.DSN, logger)
		if err != nil {
			return 0, err
		}
		return 0, store.Close()
	}
	return 0, nil
}
