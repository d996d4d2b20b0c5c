// Package postgres implements core.Store on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"

	"github.com/formatrack/server/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation is the PostgreSQL error code for a dangling FK.
const foreignKeyViolation = "23503"

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so queries can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the relational backend over PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// BeginApply opens the submission transaction.
func (s *Store) BeginApply(ctx context.Context) (core.ApplyTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapErr("begin transaction", err)
	}
	return &applyTx{tx: tx}, nil
}

// applyTx runs the submission writes on a single pgx transaction.
type applyTx struct {
	tx pgx.Tx
}

func (t *applyTx) StudentByEmail(ctx context.Context, email string) (*core.Student, error) {
	return studentByEmail(ctx, t.tx, email)
}

func (t *applyTx) InsertStudent(ctx context.Context, fullName, email string, phone *string) (*core.Student, error) {
	return insertStudent(ctx, t.tx, fullName, email, phone)
}

func (t *applyTx) CreateEnrollment(ctx context.Context, e core.Enrollment) (core.Enrollment, error) {
	return createEnrollment(ctx, t.tx, e)
}

func (t *applyTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *applyTx) Rollback(ctx context.Context) error {
	// pgx returns ErrTxClosed after Commit; deferring Rollback is fine.
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// mapErr converts driver errors into the core error kinds. Foreign-key
// violations become validation errors so that applying with a dangling
// training or session id reads as client error, not a server fault.
func mapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return core.Validationf("référence inconnue (%s)", pgErr.ConstraintName)
	}
	return &core.StorageError{Op: op, Err: err}
}
