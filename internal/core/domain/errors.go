package domain

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrTokenNotFound  = errors.New("refresh token not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ValidationError is a field-level parse failure, raised at the boundary
// before any side effect.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidationError reports whether err is a field-level validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
