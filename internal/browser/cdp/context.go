// internal/browser/cdp/context.go
package cdp

import (
	"context"
	"time"
)

// CombineContext returns a context derived from tab that is also canceled
// when op is done. It keeps tab's values, which carry the chromedp target,
// while op supplies the caller's deadline or cancellation.
func CombineContext(tab, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tab)

	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}

// valueOnlyContext keeps a parent's values but drops its deadline and
// cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }

func (valueOnlyContext) Done() <-chan struct{} { return nil }

func (valueOnlyContext) Err() error { return nil }

// Detach returns a context with ctx's values that is never canceled. The
// browser connection is allocated from it so that an interrupted command
// can still close the tab during teardown.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
