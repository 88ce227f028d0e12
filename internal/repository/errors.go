package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
)

var (
	ErrConflict   = errors.New("unique constraint violated")
	ErrForeignKey = errors.New("foreign key constraint violated")
)

// ConstraintError is a store error classified as ErrConflict, ErrForeignKey
// or domain.ErrValidation. Constraint names the index or column when the
// driver reports one.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() []error { return []error{e.Kind, e.Err} }

// classifyError wraps constraint violations from postgres or sqlite in a
// ConstraintError and returns every other error unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		target := pgErr.ConstraintName
		if target == "" {
			target = pgErr.ColumnName
		}
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return &ConstraintError{Kind: ErrConflict, Constraint: target, Err: err}
		case "23503": // foreign_key_violation
			return &ConstraintError{Kind: ErrForeignKey, Constraint: target, Err: err}
		case "23502", "22001", "23514": // not_null, string_data_right_truncation, check
			return &ConstraintError{Kind: domain.ErrValidation, Constraint: target, Err: err}
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConstraintError{Kind: ErrConflict, Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConstraintError{Kind: ErrForeignKey, Err: err}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &ConstraintError{Kind: ErrConflict, Constraint: sqliteConstraintTarget(msg, "UNIQUE constraint failed"), Err: err}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &ConstraintError{Kind: ErrForeignKey, Err: err}
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return &ConstraintError{Kind: domain.ErrValidation, Constraint: sqliteConstraintTarget(msg, "NOT NULL constraint failed"), Err: err}
	}
	return err
}

// sqliteConstraintTarget extracts "users.email" from
// "UNIQUE constraint failed: users.email (2067)". Composite keys keep the
// full column list, e.g. "user_roles.user_id, user_roles.role_id".
func sqliteConstraintTarget(msg, prefix string) string {
	_, rest, ok := strings.Cut(msg, prefix+":")
	if !ok {
		return ""
	}
	rest, _, _ = strings.Cut(rest, " (")
	return strings.TrimSpace(rest)
}

func operationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrRoleNotFound), errors.Is(err, ErrUserRoleNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForeignKey):
		return "foreign_key"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
