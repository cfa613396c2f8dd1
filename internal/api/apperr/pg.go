package apperr

import (
	"errors"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Map well-known constraint names to form fields (extend as you add constraints)
var constraintField = map[string]string{
	"book_book_type_id_fkey":     "type",
	"book_book_sub_type_id_fkey": "sub_type",
	"book_book_language_id_fkey": "language",
	"book_book_location_id_fkey": "location",
	"book_pkey":                  "id",
}

var sqlStateName = map[string]string{
	"23505": "unique_violation",
	"23503": "foreign_key_violation",
	"23502": "not_null_violation",
	"23514": "check_violation",
	"22P02": "invalid_text_representation",
	"22001": "string_data_right_truncation",
	"40001": "serialization_failure",
	"40P01": "deadlock_detected",
	"42703": "undefined_column",
	"42P01": "undefined_table",
	"42601": "syntax_error",
}

// Guess a field from a column name present in PG error detail
func fieldFromDetail(detail string) string {
	for _, k := range []string{"book_type_id", "book_sub_type_id", "book_language_id", "book_location_id", "author", "title", "id"} {
		if strings.Contains(detail, k) {
			return k
		}
	}
	return ""
}

// DBError is the server-side view of a store failure.
type DBError struct {
	Code       string
	Name       string
	Constraint string
	Field      string
	Retryable  bool
}

// FromPG extracts a DBError from a *pgconn.PgError anywhere in err's chain.
func FromPG(err error) (DBError, bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return DBError{}, false
	}
	d := DBError{
		Code:       pg.Code,
		Name:       sqlStateName[pg.Code],
		Constraint: pg.ConstraintName,
		Field:      constraintField[pg.ConstraintName],
	}
	if d.Name == "" {
		d.Name = "database_error"
	}
	if d.Field == "" && pg.Detail != "" {
		d.Field = fieldFromDetail(pg.Detail)
	}
	if d.Field == "" && pg.ColumnName != "" {
		d.Field = pg.ColumnName
	}
	switch pg.Code {
	case "40001", "40P01":
		d.Retryable = true
	}
	return d, true
}

// LogDB logs a store error with whatever SQLSTATE detail is available.
// Nothing from err ever reaches the client.
func LogDB(tag, op string, err error) {
	if err == nil {
		return
	}
	if d, ok := FromPG(err); ok {
		log.Printf("[%s] %s failed: sqlstate=%s (%s) constraint=%q field=%q retryable=%t: %v",
			tag, op, d.Code, d.Name, d.Constraint, d.Field, d.Retryable, err)
		return
	}
	log.Printf("[%s] %s failed: %v", tag, op, err)
}
