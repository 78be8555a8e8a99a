// Package wait provides bounded poll-until-condition helpers used in place of
// fixed sleeps when waiting for the browser or the automation server to settle.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when a condition does not hold before its deadline.
var ErrTimeout = errors.New("timed out waiting for condition")

// DefaultInterval is the polling interval used when none is given.
const DefaultInterval = 50 * time.Millisecond

// Condition reports whether the awaited state has been reached. A non-nil error
// aborts the wait immediately.
type Condition func(ctx context.Context) (bool, error)

// Until polls cond every interval until it returns true, returns an error, the
// timeout elapses or ctx is done. The condition is always evaluated at least
// once, so an already-true condition returns without sleeping.
func Until(ctx context.Context, what string, timeout, interval time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	deadline := time.Now().Add(timeout)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("waiting for %s: %w", what, err)
		}

		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s after %v", ErrTimeout, what, timeout)
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", what, ctx.Err())
		case <-timer.C:
		}
	}
}

// UntilNoError polls fn until it succeeds. The last error seen is reported in
// the timeout error so callers get a useful message when the wait gives up.
func UntilNoError(ctx context.Context, what string, timeout, interval time.Duration, fn func(ctx context.Context) error) error {
	var last error
	err := Until(ctx, what, timeout, interval, func(ctx context.Context) (bool, error) {
		last = fn(ctx)
		return last == nil, nil
	})
	if err != nil && errors.Is(err, ErrTimeout) && last != nil {
		return fmt.Errorf("%w (last error: %v)", err, last)
	}
	return err
}
