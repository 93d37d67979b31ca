package acidbox

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a note, octave, tempo or other parameter
// value is rejected at the boundary. The previous state is always retained
// when a ValidationError is returned.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// ErrUnsupportedEnvironment is returned when the host has no usable audio
// output. It is fatal: the engine is never started.
var ErrUnsupportedEnvironment = errors.New("audio output is not supported in this environment")

// IsValidationError reports whether any error in err's chain is a
// ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
