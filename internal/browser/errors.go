// internal/browser/errors.go
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/xkilldash9x/ficwright/internal/wait"
)

var (
	// ErrElementNotFound is returned when a selector matches nothing within the element timeout.
	ErrElementNotFound = errors.New("element not found")
	// ErrRemoteOperation wraps a failure reported by the browser for a single command.
	ErrRemoteOperation = errors.New("remote operation failed")
	// ErrSessionIO marks transport failures talking to the automation endpoint.
	ErrSessionIO = errors.New("session i/o failure")
	// ErrStaleResolver is returned by a resolver created before the last navigation or refresh.
	ErrStaleResolver = errors.New("resolver is stale")
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = wait.ErrTimeout
)

// classify wraps err with the operation name. Anything that is not already a
// transport failure or a context error is reported as ErrRemoteOperation.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrSessionIO),
		errors.Is(err, ErrRemoteOperation),
		errors.Is(err, ErrElementNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrRemoteOperation, err)
	}
}
