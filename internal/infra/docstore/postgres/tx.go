package postgres

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"class-booking/internal/infra"
	"class-booking/internal/pkg/errs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const maxTxRetries = 3

var errMaxRetriesExceeded = errs.New("transaction failed after max retries")

// runInTx commits fn in a ReadCommitted transaction. Serialization failures
// and deadlocks are retried with jittered backoff; everything else is returned.
func (s *Store) runInTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	base := 50 * time.Millisecond

	for attempt := 0; attempt <= maxTxRetries; attempt++ {
		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		if err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "begin transaction", err)
		}

		err = fn(ctx, tx)
		if err == nil {
			if err = tx.Commit(ctx); err == nil {
				return nil
			}
		}

		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed",
				slog.Int("attempt", attempt+1),
				slog.String("error", rbErr.Error()))
		}

		if !isRetryable(err) {
			return err
		}
		if attempt == maxTxRetries {
			s.logger.Error("transaction failed after max retries",
				slog.Int("attempts", attempt+1),
				slog.String("error", err.Error()))
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "commit transaction", errs.Mark(err, errMaxRetriesExceeded))
		}

		wait := backoff(attempt, base)
		s.logger.Warn("retrying transaction",
			slog.Int("attempt", attempt+1),
			slog.Int64("wait_ms", wait.Milliseconds()),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return errMaxRetriesExceeded
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	}
	return false
}

func backoff(attempt int, base time.Duration) time.Duration {
	wait := time.Duration(1<<attempt) * base
	return wait + time.Duration(randInt63n(int64(wait/5)))
}

func randInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// #nosec G115 -- high bit masked
	return int64(binary.BigEndian.Uint64(buf[:])&0x7FFFFFFFFFFFFFFF) % n
}
