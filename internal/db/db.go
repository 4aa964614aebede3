package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configure Open.
type Options struct {
	Driver         string
	DSN            string
	MaxOpenConns   int
	ConnectTimeout time.Duration
}

// Open opens a SQLite or PostgreSQL database and validates connectivity.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*sql.DB, error) {
	switch opts.Driver {
	case DriverSQLite:
		return openSQLite(opts.DSN)
	case DriverPostgres:
		return openPostgres(ctx, opts, logger)
	}
	return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
}

// openSQLite sets recommended pragmas before returning the handle.
func openSQLite(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force
	// and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}

// openPostgres retries connect and ping with exponential backoff until
// ConnectTimeout elapses.
func openPostgres(ctx context.Context, opts Options, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(2 * time.Minute)

	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = 15 * time.Second
	policy.MaxElapsedTime = opts.ConnectTimeout
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = time.Minute
	}

	logger.Info("connecting to postgres")
	err = backoff.RetryNotify(
		func() error {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("postgres connection failed, retrying",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	logger.Info("connected to postgres")
	return db, nil
}

// Rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL. Queries for
// other drivers are returned unchanged. Question marks inside string
// literals are not supported.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Dialect returns the goose dialect name for a driver.
func Dialect(driver string) string {
	if driver == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}
