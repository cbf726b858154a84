package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/util"
)

const defaultTimeout = 3 * time.Second

// Querier is the handle every store accessor takes. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the same accessor runs inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Options struct {
	MaxConns int32
	MinConns int32
}

type DB struct {
	pool *pgxpool.Pool
}

func New(dsn string, opts Options) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 25
	config.MinConns = 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	config.MaxConnLifetime = 2 * time.Hour
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

// Conn returns the non-transactional handle.
func (db *DB) Conn() Querier {
	return db.pool
}

// RunInTx runs fn inside a transaction, committing when fn returns nil and
// rolling back on error or panic.
func (db *DB) RunInTx(ctx context.Context, fn func(Querier) error) (err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				util.Logger.WithFields(logrus.Fields{"error": rbErr}).Error("transaction rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (db *DB) Close() {
	db.pool.Close()
}
