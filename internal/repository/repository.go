package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	// ErrMissingUser indica que el usuario referenciado ya no existe.
	ErrMissingUser = errors.New("referenced user not found")
)

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02"
	pgForeignKeyMissing = "23503"

	foodUserForeignKey = "foods_user_id_fkey"
)

// DBTX abstrae pgxpool.Pool, pgx.Conn y pgx.Tx para los repositorios.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapError traduce errores de pgx a los errores del paquete.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgForeignKeyMissing:
			if pgErr.ConstraintName == foodUserForeignKey {
				return ErrMissingUser
			}
			return ErrNotFound
		case pgInvalidTextFormat:
			// un id mal formado equivale a "no existe".
			return ErrNotFound
		}
	}
	return err
}
