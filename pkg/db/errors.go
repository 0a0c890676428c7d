package db

import (
	stderrors "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const pgUniqueViolation = "23505"

// IsNotFound reports whether err is gorm's record-not-found sentinel.
func IsNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a unique constraint failure.
// It recognizes pgx and lib/pq driver errors, plus the sqlite message
// shape used by the test databases.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgxErr *pgconn.PgError
	if stderrors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
