// Package store holds the PostgreSQL repositories backing the service layer.
// Repositories return (nil, nil) when an entity is absent; classifying that
// as 404 versus 403 is the caller's decision. Unique-index violations are
// surfaced as conflict errors so the database remains the dedup safety net
// even when two pre-checked writes race.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/hotelaccelerator/backoffice-service/internal/errs"
)

// RedisClient is the subset of redis.Client the store uses, so tests can
// substitute miniredis-backed clients or fakes.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Open connects to PostgreSQL through the pgx stdlib driver and verifies the
// connection.
func Open(dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*config)
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

const pgUniqueViolation = "23505"

// mapConflict converts a unique-index violation into a ConflictError with the
// given message; other errors pass through unchanged.
func mapConflict(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return errs.Conflict("%s", message)
	}
	return err
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
