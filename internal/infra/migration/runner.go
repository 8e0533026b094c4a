// Package migration applies numbered SQL files (NNN_name.sql) in order and
// records the last applied version.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"class-booking/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is the minimal surface the runner needs from a database handle.
type Conn interface {
	Exec(ctx context.Context, query string) error
	QueryInt(ctx context.Context, query string) (int, error)
}

type Migration struct {
	Version int
	Name    string
	SQL     string
}

type Runner struct {
	conn   Conn
	fsys   fs.FS
	dir    string
	logger *slog.Logger
}

func NewRunner(conn Conn, fsys fs.FS, dir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{conn: conn, fsys: fsys, dir: dir, logger: logger}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	return r.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL)`)
}

func (r *Runner) GetCurrentVersion(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, errs.Wrap(err, "create schema_migrations")
	}
	v, err := r.conn.QueryInt(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, errs.Wrap(err, "read schema version")
	}
	return v, nil
}

func (r *Runner) SetVersion(ctx context.Context, version int) error {
	if err := r.ensureTable(ctx); err != nil {
		return errs.Wrap(err, "create schema_migrations")
	}
	if err := r.conn.Exec(ctx, `DELETE FROM schema_migrations`); err != nil {
		return errs.Wrap(err, "clear schema version")
	}
	if err := r.conn.Exec(ctx, fmt.Sprintf(`INSERT INTO schema_migrations (version) VALUES (%d)`, version)); err != nil {
		return errs.Wrap(err, "write schema version")
	}
	return nil
}

// ReadMigrationFiles returns the migrations sorted by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fsys, r.dir)
	if err != nil {
		return nil, errs.Wrapf(err, "read migrations dir %s", r.dir)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".sql")
		num, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, errs.Newf("migration %s: expected NNN_name.sql", e.Name())
		}
		version, err := strconv.Atoi(num)
		if err != nil {
			return nil, errs.Newf("migration %s: invalid version %q", e.Name(), num)
		}
		body, err := fs.ReadFile(r.fsys, path.Join(r.dir, e.Name()))
		if err != nil {
			return nil, errs.Wrapf(err, "read migration %s", e.Name())
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, errs.Newf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

// Apply runs every migration newer than the recorded version and returns how
// many were applied.
func (r *Runner) Apply(ctx context.Context) (int, error) {
	current, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := r.conn.Exec(ctx, m.SQL); err != nil {
			return applied, errs.Wrapf(err, "apply migration %03d_%s", m.Version, m.Name)
		}
		if err := r.SetVersion(ctx, m.Version); err != nil {
			return applied, err
		}
		r.logger.Info("migration applied",
			slog.Int("version", m.Version),
			slog.String("name", m.Name))
		applied++
	}
	return applied, nil
}

type pgxConn struct {
	pool *pgxpool.Pool
}

func PgxConn(pool *pgxpool.Pool) Conn {
	return pgxConn{pool: pool}
}

func (c pgxConn) Exec(ctx context.Context, query string) error {
	_, err := c.pool.Exec(ctx, query)
	return err
}

func (c pgxConn) QueryInt(ctx context.Context, query string) (int, error) {
	var v int
	err := c.pool.QueryRow(ctx, query).Scan(&v)
	return v, err
}

type sqlConn struct {
	db *sql.DB
}

func SQLConn(db *sql.DB) Conn {
	return sqlConn{db: db}
}

func (c sqlConn) Exec(ctx context.Context, query string) error {
	_, err := c.db.ExecContext(ctx, query)
	return err
}

func (c sqlConn) QueryInt(ctx context.Context, query string) (int, error) {
	var v int
	err := c.db.QueryRowContext(ctx, query).Scan(&v)
	return v, err
}
