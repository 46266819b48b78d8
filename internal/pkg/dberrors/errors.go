package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories care about
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

// IsDuplicateConstraintError reports a unique violation on the named constraint.
// An empty constraintName matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return hasCode(err, UniqueViolation, constraintName)
}

// IsForeignKeyError reports a foreign key violation on the named constraint.
// An empty constraintName matches any foreign key violation.
func IsForeignKeyError(err error, constraintName string) bool {
	return hasCode(err, ForeignKeyViolation, constraintName)
}

// IsCheckViolation reports a CHECK constraint failure
func IsCheckViolation(err error) bool {
	return hasCode(err, CheckViolation, "")
}

// ConstraintName returns the violated constraint, if any
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}
