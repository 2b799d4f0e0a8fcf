package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so that registry and
// resolver queries run either standalone or inside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFunc is one attempt at a unit of work. It may run more than once and must
// not keep state from a previous attempt.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// InTx runs fn in a SERIALIZABLE transaction bounded by the configured
// timeout. A serialization failure or deadlock re-runs fn from the start with
// exponential backoff, up to the configured retry count. Domain sentinel
// errors are returned unchanged; every other failure is a *StorageError.
// The transaction is rolled back on every path that does not commit.
func (d *DB) InTx(ctx context.Context, op string, fn TxFunc) error {
	attempt := func() error {
		err := d.runTx(ctx, fn)
		if err == nil || isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(attempt, backoff.WithContext(d.txBackOff(), ctx))
	return storageErr(op, err)
}

func (d *DB) runTx(ctx context.Context, fn TxFunc) error {
	timeout := d.txTimeout
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := d.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (d *DB) txBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(d.txMaxRetries))
}
