// Package postgres implements the employee and survey repositories on
// PostgreSQL via pgx. Multi-row writes (survey + questions, response +
// answers) run inside a single transaction; unique-constraint violations are
// translated to the domain's ConflictError.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samSKIF/EmployeeRewards-sub009/domainerr"
)

// TransactionalFunc executes business logic within a transaction.
type TransactionalFunc func(ctx context.Context) error

// Transactor executes a function within a database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn TransactionalFunc) error
}

// DB holds the database connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection pool and verifies connectivity.
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// WithTransaction implements the Transactor interface. The transaction is
// injected into the context so nested repository calls join it.
func (db *DB) WithTransaction(ctx context.Context, fn TransactionalFunc) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if tx has been committed

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// txKey is a private key type to store the transaction in the context.
type txKey struct{}

// querier is the subset of pgx shared by a pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn returns the ambient transaction when one is present, the pool
// otherwise.
func (db *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}

// mapConstraintError translates a unique violation (23505) into the domain's
// ConflictError; everything else passes through unchanged.
func mapConstraintError(err error, reason string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainerr.ConflictError{Reason: reason}
	}
	return err
}
