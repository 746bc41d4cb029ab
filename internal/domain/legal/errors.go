package legal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("already exists")
	ErrValidation              = errors.New("validation failed")
	ErrVersionConflict         = errors.New("version conflict")
	ErrJurisdictionUnconfirmed = errors.New("jurisdiction selection is not confirmed")
)

// ValidationError carries every problem found before a write was attempted.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// Problems returns the structured list when err is a validation error.
func Problems(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return append([]string(nil), ve.Problems...)
	}
	if errors.Is(err, ErrValidation) {
		return []string{err.Error()}
	}
	return nil
}

func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}
