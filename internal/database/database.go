// Package database centralises sqlx connection helpers.  The default driver
// is go-sql-driver/mysql, which also works with MariaDB and Cockroach when
// configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(ctx, dsn)                    – conservative pool sizes.
//	OpenWithOptions(ctx, dsn, opts)   – fine-grained control and retries.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Options tunes pool sizes and the connect retry loop.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retries         int
	RetryBackoff    time.Duration
}

// DefaultOptions are suitable for the process-wide control-plane pool.
var DefaultOptions = Options{
	MaxOpenConns:    15,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	Retries:         3,
	RetryBackoff:    time.Second,
}

// Open returns a *sqlx.DB using DefaultOptions.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, DefaultOptions)
}

// OpenWithOptions opens a MySQL pool and pings it, retrying up to
// opts.Retries extra times.  The driver name is fixed to "mysql".
func OpenWithOptions(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	configure(db, opts)

	if err := pingWithRetry(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configure(db *sqlx.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}

func pingWithRetry(ctx context.Context, db *sqlx.DB, opts Options) error {
	var err error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		zap.L().Warn("database ping failed", zap.Int("attempt", attempt+1), zap.Error(err))
		if attempt == opts.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database: ping: %w", ctx.Err())
		case <-time.After(opts.RetryBackoff):
		}
	}
	return fmt.Errorf("database: ping after %d attempts: %w", opts.Retries+1, err)
}
