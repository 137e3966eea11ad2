package gallery

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Handlers map these onto HTTP statuses;
// anything not listed here is treated as a storage failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidShare       = errors.New("invalid share link")
	ErrUnsupportedType    = errors.New("unsupported file type")
)

// ValidationError marks a request the caller can fix and retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
