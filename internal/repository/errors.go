package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference is returned when a write references a missing
	// book or genre.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// foreign_key_violation
const pqForeignKeyViolation = "23503"

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return ErrInvalidReference
	}
	return err
}
