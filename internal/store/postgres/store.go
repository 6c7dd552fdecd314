// Package postgres implements the dashboard repositories over PostgreSQL
// using hand-written SQL and pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mulearn/dashboard/internal/core"
)

// PostgreSQL error codes the store translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements core.Store.
type Store struct {
	pool *pgxpool.Pool
	db   DBTX
}

var _ core.Store = (*Store)(nil)

// New returns a store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// translate maps driver errors onto the domain sentinels, keeping the
// original error in the chain.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", what, core.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if strings.Contains(pgErr.ConstraintName, "hashtag") {
				return fmt.Errorf("%s: %w: %w", what, core.ErrHashtagExists, err)
			}
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s: %w", what, core.ErrInvalidReference, pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// parseID validates an id before it reaches the database. Malformed ids
// cannot match any row.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("id %q: %w", id, core.ErrNotFound)
	}
	return u, nil
}

// optionalID parses a nullable reference. A malformed id is reported as
// an invalid reference since it names a row that cannot exist.
func optionalID(id *string) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	u, err := uuid.Parse(strings.TrimSpace(*id))
	if err != nil {
		return nil, fmt.Errorf("id %q: %w", *id, core.ErrInvalidReference)
	}
	return &u, nil
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
