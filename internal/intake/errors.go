package intake

import (
	"errors"
	"fmt"

	"intakr/internal/store"
)

// ValidationError reports a transition rejected before any store access.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid field %q", e.Field)
}

// IsNotFound reports whether err means the request or project record is
// absent. Not-found errors are terminal and never retried.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
