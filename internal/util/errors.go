package util

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("record not found")
	ErrEmailRegistered  = errors.New("email is already registered")
	ErrUserSuspended    = errors.New("account suspended, contact the administrator")
	ErrNoFileAttached   = errors.New("no file is attached to this resource")
)

// ValidationError carries a user-facing message; the operation it aborted
// must not have mutated anything.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnauthorized)
}
