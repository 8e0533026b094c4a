// Package sqlite stores documents as JSON text in a local SQLite file. Change
// notifications only reach subscribers in the same process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"class-booking/internal/infra"
	"class-booking/internal/infra/docstore/jsondoc"
	"class-booking/internal/infra/docstore/notify"
	"class-booking/internal/infra/migration"
	"class-booking/internal/usecase/shared"
	"class-booking/migrations"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	listSQL   = `SELECT id, fields FROM documents WHERE collection = ? ORDER BY seq`
	getSQL    = `SELECT fields FROM documents WHERE collection = ? AND id = ?`
	updateSQL = `UPDATE documents SET fields = ?, updated_at = ? WHERE collection = ? AND id = ?`
	seqSQL    = `SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE collection = ?`
	insertSQL = `INSERT INTO documents (collection, id, fields, seq, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db     *sql.DB
	feed   *notify.Broadcaster
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, infra.WrapRepoErr(logger, infra.KindDBFailure, "create database directory", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, infra.WrapRepoErr(logger, infra.KindDBFailure, "open database", err)
	}
	// one connection: serializes writers and keeps ":memory:" databases alive
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, infra.WrapRepoErr(logger, infra.KindDBFailure, "configure database", err)
	}

	runner := migration.NewRunner(migration.SQLConn(db), migrations.FS, migrations.SQLiteDir, logger)
	if _, err := runner.Apply(ctx); err != nil {
		db.Close()
		return nil, infra.WrapRepoErr(logger, infra.KindDBFailure, "apply schema", err)
	}

	return &Store{
		db:     db,
		feed:   notify.NewBroadcaster(),
		logger: logger.With(slog.String("component", "docstore_sqlite")),
	}, nil
}

func (s *Store) ListAll(ctx context.Context, collection string) ([]shared.Document, error) {
	return s.list(ctx, s.db, collection)
}

func (s *Store) Subscribe(ctx context.Context, collection string, onChange func([]shared.Document)) (shared.Unsubscribe, error) {
	return s.feed.Subscribe(ctx, collection, onChange, s.lister(collection))
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		return tx.UpdateFields(ctx, collection, id, fields)
	})
}

func (s *Store) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	return s.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		return tx.UpdateFieldsIf(ctx, collection, id, expect, set)
	})
}

func (s *Store) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	var id string
	err := s.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
		var err error
		id, err = tx.Insert(ctx, collection, fields)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx shared.TxWriter) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "begin transaction", err)
	}

	w := &txWriter{store: s, tx: sqlTx, touched: map[string]struct{}{}}
	if err := fn(ctx, w); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "commit transaction", err)
	}

	for c := range w.touched {
		if err := s.feed.Notify(context.WithoutCancel(ctx), c, s.lister(c)); err != nil {
			s.logger.Warn("change notification failed",
				slog.String("collection", c),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) list(ctx context.Context, q queryer, collection string) ([]shared.Document, error) {
	rows, err := q.QueryContext(ctx, listSQL, collection)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "list documents", err)
	}
	defer rows.Close()

	docs := []shared.Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "scan document", err)
		}
		fields, err := jsondoc.Decode([]byte(raw))
		if err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindInvalidDocument, "decode document", err)
		}
		docs = append(docs, shared.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "iterate documents", err)
	}
	return docs, nil
}

func (s *Store) lister(collection string) notify.Lister {
	return func(ctx context.Context) ([]shared.Document, error) {
		return s.list(ctx, s.db, collection)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type txWriter struct {
	store   *Store
	tx      *sql.Tx
	touched map[string]struct{}
}

func (w *txWriter) UpdateFields(ctx context.Context, collection, id string, fields shared.Fields) error {
	return w.update(ctx, collection, id, nil, fields)
}

func (w *txWriter) UpdateFieldsIf(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	return w.update(ctx, collection, id, expect, set)
}

func (w *txWriter) Insert(ctx context.Context, collection string, fields shared.Fields) (string, error) {
	logger := w.store.logger
	body, err := jsondoc.Encode(fields)
	if err != nil {
		return "", infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode document", err)
	}

	var seq int64
	if err := w.tx.QueryRowContext(ctx, seqSQL, collection).Scan(&seq); err != nil {
		return "", infra.WrapRepoErr(logger, infra.KindDBFailure, "allocate insert order", err)
	}
	id := uuid.NewString()
	ts := now()
	if _, err := w.tx.ExecContext(ctx, insertSQL, collection, id, string(body), seq, ts, ts); err != nil {
		return "", infra.WrapRepoErr(logger, infra.KindDBFailure, "insert document", err)
	}
	w.touched[collection] = struct{}{}
	return id, nil
}

func (w *txWriter) update(ctx context.Context, collection, id string, expect, set shared.Fields) error {
	logger := w.store.logger

	var raw string
	err := w.tx.QueryRowContext(ctx, getSQL, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return infra.WrapRepoErr(logger, infra.KindNotFound, "document not found", nil)
	}
	if err != nil {
		return infra.WrapRepoErr(logger, infra.KindDBFailure, "read document", err)
	}
	current, err := jsondoc.Decode([]byte(raw))
	if err != nil {
		return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "decode document", err)
	}

	if expect != nil {
		want, err := jsondoc.Normalize(expect)
		if err != nil {
			return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode precondition", err)
		}
		if !jsondoc.Matches(current, want) {
			return infra.WrapRepoErr(logger, infra.KindPreconditionFailed, "document changed", nil)
		}
	}
	patch, err := jsondoc.Normalize(set)
	if err != nil {
		return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode patch", err)
	}
	body, err := jsondoc.Encode(jsondoc.Merge(current, patch))
	if err != nil {
		return infra.WrapRepoErr(logger, infra.KindInvalidDocument, "encode document", err)
	}

	if _, err := w.tx.ExecContext(ctx, updateSQL, string(body), now(), collection, id); err != nil {
		return infra.WrapRepoErr(logger, infra.KindDBFailure, "update document", err)
	}
	w.touched[collection] = struct{}{}
	return nil
}
