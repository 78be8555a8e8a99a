// Package forms wraps the controls of the "post new work" form in typed
// widgets that read their current state from the live page and apply only
// the UI actions needed to reach a desired state.
package forms

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

// ErrNoSuchOption is returned when a desired value is not offered by a control.
var ErrNoSuchOption = errors.New("no such option")

// TextField is a text input or textarea.
type TextField struct {
	node *browser.Node
}

func NewTextField(n *browser.Node) *TextField { return &TextField{node: n} }

// Text returns the current value.
func (f *TextField) Text(ctx context.Context) (string, error) {
	return f.node.Property(ctx, "value")
}

// Clear empties the field.
func (f *TextField) Clear(ctx context.Context) error {
	return f.node.Clear(ctx)
}

// SetText replaces the content of the field with s.
func (f *TextField) SetText(ctx context.Context, s string) error {
	if err := f.Clear(ctx); err != nil {
		return err
	}
	return f.Append(ctx, s)
}

// Append focuses the field, types s and then presses each of keys.
func (f *TextField) Append(ctx context.Context, s string, keys ...browser.Key) error {
	if err := f.node.Focus(ctx); err != nil {
		return err
	}
	if s != "" {
		if err := f.node.SendKeys(ctx, s); err != nil {
			return err
		}
	}
	for _, k := range keys {
		if err := f.node.PressKey(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Checkbox is a single checkbox input.
type Checkbox struct {
	node *browser.Node
}

func NewCheckbox(n *browser.Node) *Checkbox { return &Checkbox{node: n} }

// Value returns the checkbox's value attribute.
func (c *Checkbox) Value(ctx context.Context) (string, error) {
	return c.node.Property(ctx, "value")
}

// State reports whether the box is checked.
func (c *Checkbox) State(ctx context.Context) (bool, error) {
	return c.node.BoolProperty(ctx, "checked")
}

// Set clicks the box only when its state differs from state and it can be
// interacted with. Calling it again with the same state does nothing.
func (c *Checkbox) Set(ctx context.Context, state bool) error {
	current, err := c.State(ctx)
	if err != nil {
		return err
	}
	if current == state {
		return nil
	}
	ok, err := c.node.Interactable(ctx)
	if err != nil {
		return err
	}
	if !ok {
		c.node.Session().Logger().Debug("Skipping checkbox that is not interactable.",
			zap.String("selector", c.node.Selector()), zap.Bool("desired", state))
		return nil
	}
	return c.node.Click(ctx)
}

// optionText renders an option's label the way it appears to the user.
func optionText(markup string) string {
	return html.UnescapeString(strings.TrimSpace(markup))
}

// pause waits for d or until ctx is done. It only paces demonstrations.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func resolveWith[T any](ctx context.Context, r *browser.Resolver, wrap func(*browser.Node) T) (T, error) {
	n, err := r.Resolve(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to resolve %s: %w", r.Selector(), err)
	}
	return wrap(n), nil
}
