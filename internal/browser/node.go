// internal/browser/node.go
package browser

import (
	"context"

	"go.uber.org/zap"
)

// Node is a resolved element bound to the session and epoch it was found in.
// Every operation goes through the session so calls stay serialized.
type Node struct {
	session  *Session
	element  Element
	selector string
	epoch    uint64
}

// Element exposes the underlying wire handle.
func (n *Node) Element() Element { return n.element }

// Selector is the selector this node was resolved from.
func (n *Node) Selector() string { return n.selector }

// Session returns the owning session.
func (n *Node) Session() *Session { return n.session }

// Find returns a resolver scoped to this node.
func (n *Node) Find(selector string) *Resolver {
	return newResolver(n.session, n, selector, n.epoch)
}

func (n *Node) Click(ctx context.Context) error {
	n.session.logger.Debug("Click.", zap.String("selector", n.selector))
	return n.session.do(ctx, "click "+n.selector, true, n.element.Click)
}

func (n *Node) Clear(ctx context.Context) error {
	return n.session.do(ctx, "clear "+n.selector, true, n.element.Clear)
}

func (n *Node) Focus(ctx context.Context) error {
	return n.session.do(ctx, "focus "+n.selector, true, n.element.Focus)
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	return n.session.do(ctx, "scroll "+n.selector, false, n.element.ScrollIntoView)
}

// SendKeys types text into the element.
func (n *Node) SendKeys(ctx context.Context, text string) error {
	return n.session.do(ctx, "send keys "+n.selector, true, func(ctx context.Context) error {
		return n.element.SendKeys(ctx, text)
	})
}

// PressKey sends a single non-printable key.
func (n *Node) PressKey(ctx context.Context, key Key) error {
	return n.session.do(ctx, "press "+key.String()+" "+n.selector, true, func(ctx context.Context) error {
		return n.element.PressKey(ctx, key)
	})
}

// Property reads a DOM property as a string.
func (n *Node) Property(ctx context.Context, name string) (string, error) {
	var value string
	err := n.session.do(ctx, "property "+name+" "+n.selector, false, func(ctx context.Context) error {
		var err error
		value, err = n.element.Property(ctx, name)
		return err
	})
	return value, err
}

// BoolProperty reads a boolean DOM property such as checked or selected.
func (n *Node) BoolProperty(ctx context.Context, name string) (bool, error) {
	v, err := n.Property(ctx, name)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (n *Node) InnerHTML(ctx context.Context) (string, error) {
	var markup string
	err := n.session.do(ctx, "inner html "+n.selector, false, func(ctx context.Context) error {
		var err error
		markup, err = n.element.InnerHTML(ctx)
		return err
	})
	return markup, err
}

// Interactable reports whether the element is displayed and enabled.
func (n *Node) Interactable(ctx context.Context) (bool, error) {
	var ok bool
	err := n.session.do(ctx, "interactable "+n.selector, false, func(ctx context.Context) error {
		var err error
		ok, err = n.element.Interactable(ctx)
		return err
	})
	return ok, err
}
