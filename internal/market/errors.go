package market

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrReference is returned when strict references are on and a foreign key
	// points at a missing row, or a referenced row is being deleted.
	ErrReference = errors.New("reference violation")
)

const pgForeignKeyViolation = "23503"

// classify maps driver errors onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return errors.Join(ErrReference, err)
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgForeignKeyViolation {
		return errors.Join(ErrReference, err)
	}
	return err
}
