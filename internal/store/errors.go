package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrProductNotFound is returned when a product post's products row is
// missing. It wraps ErrNotFound so generic not-found handling still
// applies; callers that care can tell the two apart.
var ErrProductNotFound = fmt.Errorf("product info: %w", ErrNotFound)

// ErrConflict is returned when an insert violates a uniqueness constraint.
var ErrConflict = errors.New("conflict")

const uniqueViolationCode = "23505"

// conflictOr maps postgres unique-violation errors to ErrConflict and
// returns any other error unchanged. Races between an existence check and
// an insert land here instead of surfacing as opaque store failures.
func conflictOr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ErrConflict
	}
	return err
}
