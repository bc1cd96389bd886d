package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the referenced product or alert does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoData means the operation requires recorded history that is absent.
	ErrNoData = errors.New("no data available")
	// ErrConflict means a re-registration collides with a differing record.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries the full list of input violations.
// Validation is exhaustive: every violation is collected, not just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

// Validation builds a ValidationError from the collected violations,
// or returns nil when there are none.
func Validation(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
