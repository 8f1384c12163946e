package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrForeignKey is returned when a row is still referenced or references a missing row.
	ErrForeignKey = errors.New("foreign key constraint violation")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// wrapWriteError maps driver errors of INSERT/UPDATE/DELETE statements onto sentinels.
func wrapWriteError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		case "foreign_key_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrForeignKey, pqErr.Message, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// checkAffected turns a zero-row UPDATE/DELETE into ErrNotFound.
func checkAffected(result sql.Result, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// whereBuilder accumulates numbered placeholders for dynamic WHERE clauses.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

// add appends a condition; its %d (or %[1]d) verbs receive the placeholder number of arg.
func (w *whereBuilder) add(condition string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, fmt.Sprintf(condition, len(w.args)))
}

func (w *whereBuilder) addRaw(condition string) {
	w.conditions = append(w.conditions, condition)
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	clause := " WHERE " + w.conditions[0]
	for _, c := range w.conditions[1:] {
		clause += " AND " + c
	}
	return clause
}

// paginate appends LIMIT/OFFSET when pageSize > 0.
func (w *whereBuilder) paginate(page, pageSize int) string {
	if pageSize <= 0 {
		return ""
	}
	w.args = append(w.args, pageSize)
	out := fmt.Sprintf(" LIMIT $%d", len(w.args))
	if page > 1 {
		w.args = append(w.args, (page-1)*pageSize)
		out += fmt.Sprintf(" OFFSET $%d", len(w.args))
	}
	return out
}
