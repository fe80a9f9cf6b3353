package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes for constraint failures.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint failure
// (duplicate business key, duplicate association pair).
func IsUniqueViolation(err error) bool {
	return pqCode(err) == pqUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key failure: either a
// reference to a missing row or a delete blocked by a restrict rule.
func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == pqForeignKeyViolation
}

// IsCheckViolation reports whether err is a check constraint failure (range or
// enum column checks).
func IsCheckViolation(err error) bool {
	return pqCode(err) == pqCheckViolation
}

// IsConstraintViolation reports whether err is any constraint failure.
// Connection and driver errors are not constraint violations and pass through
// untranslated for the caller to handle.
func IsConstraintViolation(err error) bool {
	switch pqCode(err) {
	case pqUniqueViolation, pqForeignKeyViolation, pqCheckViolation:
		return true
	}
	return false
}
