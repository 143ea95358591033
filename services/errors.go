package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Error kinds surfaced by the services. Callers match them with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("operation not permitted for this user role")
	ErrInvalidTransition = errors.New("invalid status")
	ErrPersistence       = errors.New("persistence error")
)

// maxAmount is the first value a decimal(10,2) column cannot hold.
var maxAmount = decimal.New(1, 8)

func kindf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...interface{}) error {
	return kindf(ErrValidation, format, args...)
}

func notFoundf(format string, args ...interface{}) error {
	return kindf(ErrNotFound, format, args...)
}

func conflictf(format string, args ...interface{}) error {
	return kindf(ErrConflict, format, args...)
}

// dbError classifies an error coming back from gorm. Errors that already carry
// one of the service kinds pass through untouched.
func dbError(err error, action string) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden, ErrInvalidTransition, ErrPersistence} {
		if errors.Is(err, kind) {
			return err
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, action)
	case errors.Is(err, gorm.ErrDuplicatedKey), isConstraintMessage(err, "unique", "duplicate"):
		return fmt.Errorf("%w: %s: duplicate record", ErrConflict, action)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isConstraintMessage(err, "foreign key"):
		return fmt.Errorf("%w: %s: record is still referenced", ErrConflict, action)
	case errors.Is(err, gorm.ErrCheckConstraintViolated), isConstraintMessage(err, "check constraint"):
		return fmt.Errorf("%w: %s: value out of range", ErrValidation, action)
	}
	return fmt.Errorf("%w: %s: %v", ErrPersistence, action, err)
}

// isConstraintMessage catches drivers that do not translate constraint errors.
func isConstraintMessage(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
