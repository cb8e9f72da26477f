package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict indica que la escritura violó una restricción única.
var ErrConflict = errors.New("unique constraint violation")

const uniqueViolation = "23505"

// mapWriteError traduce violaciones de unicidad a ErrConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
