package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: UniqueViolation, ConstraintName: "students_registration_no_key"})
	fk := &pgconn.PgError{Code: ForeignKeyViolation, ConstraintName: "students_batch_id_fkey"}

	assert.True(t, IsDuplicateConstraintError(dup, "students_registration_no_key"))
	assert.True(t, IsDuplicateConstraintError(dup, ""))
	assert.False(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.False(t, IsForeignKeyError(dup, ""))

	assert.True(t, IsForeignKeyError(fk, "students_batch_id_fkey"))
	assert.Equal(t, "students_batch_id_fkey", ConstraintName(fk))

	assert.False(t, IsCheckViolation(errors.New("plain")))
	assert.Equal(t, "", ConstraintName(errors.New("plain")))
}
