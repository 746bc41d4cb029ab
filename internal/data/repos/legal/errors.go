package legal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

// MapError folds driver errors into the domain sentinels so services can
// branch with errors.Is regardless of the backing store.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrVersionConflict) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, domain.NewValidationError("referenced entity does not exist: "+pgErr.ConstraintName))
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%s: %w: %w", op, domain.ErrVersionConflict, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key"):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return fmt.Errorf("%s: %w", op, domain.NewValidationError("referenced entity does not exist"))
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "deadlock"), strings.Contains(msg, "serialization"):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrVersionConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryable reports whether a write may be retried from a fresh read.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrVersionConflict)
}
