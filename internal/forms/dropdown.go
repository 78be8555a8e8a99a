package forms

import (
	"context"
	"time"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

// Option is one entry of a Dropdown.
type Option struct {
	Value    string
	Text     string
	Selected bool
}

// Dropdown is a select element.
type Dropdown struct {
	node    *browser.Node
	options *browser.Resolver
}

func NewDropdown(n *browser.Node) *Dropdown {
	return &Dropdown{node: n, options: n.Find("option")}
}

func (d *Dropdown) optionNodes(ctx context.Context) ([]*browser.Node, error) {
	return d.options.ResolveAll(ctx)
}

// Options lists every option with its value, label and selection state.
func (d *Dropdown) Options(ctx context.Context) ([]Option, error) {
	nodes, err := d.optionNodes(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(nodes))
	for _, n := range nodes {
		value, err := n.Property(ctx, "value")
		if err != nil {
			return nil, err
		}
		markup, err := n.InnerHTML(ctx)
		if err != nil {
			return nil, err
		}
		selected, err := n.BoolProperty(ctx, "selected")
		if err != nil {
			return nil, err
		}
		opts = append(opts, Option{Value: value, Text: optionText(markup), Selected: selected})
	}
	return opts, nil
}

// CurrentValue returns the value of the selected option. ok is false when
// no option is flagged as selected.
func (d *Dropdown) CurrentValue(ctx context.Context) (value string, ok bool, err error) {
	nodes, err := d.optionNodes(ctx)
	if err != nil {
		return "", false, err
	}
	for _, n := range nodes {
		selected, err := n.BoolProperty(ctx, "selected")
		if err != nil {
			return "", false, err
		}
		if selected {
			value, err := n.Property(ctx, "value")
			return value, err == nil, err
		}
	}
	return "", false, nil
}

// SelectByValue opens the dropdown and clicks the option whose value is v.
// It reports false, without error, when no option matches.
func (d *Dropdown) SelectByValue(ctx context.Context, v string) (bool, error) {
	return d.selectBy(ctx, func(n *browser.Node) (bool, error) {
		value, err := n.Property(ctx, "value")
		return value == v, err
	})
}

// SelectByText is SelectByValue matching on the visible label.
func (d *Dropdown) SelectByText(ctx context.Context, text string) (bool, error) {
	return d.selectBy(ctx, func(n *browser.Node) (bool, error) {
		markup, err := n.InnerHTML(ctx)
		return optionText(markup) == text, err
	})
}

func (d *Dropdown) selectBy(ctx context.Context, match func(*browser.Node) (bool, error)) (bool, error) {
	if err := d.node.Click(ctx); err != nil {
		return false, err
	}
	nodes, err := d.optionNodes(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range nodes {
		ok, err := match(n)
		if err != nil {
			return false, err
		}
		if ok {
			return true, n.Click(ctx)
		}
	}
	return false, nil
}

// Demonstrate cycles through values and then restores the original selection.
func (d *Dropdown) Demonstrate(ctx context.Context, values []string, delay time.Duration) error {
	if err := d.node.ScrollIntoView(ctx); err != nil {
		return err
	}
	current, _, err := d.CurrentValue(ctx)
	if err != nil {
		return err
	}
	for _, v := range values {
		if _, err := d.SelectByValue(ctx, v); err != nil {
			return err
		}
		if err := pause(ctx, delay); err != nil {
			return err
		}
	}
	_, err = d.SelectByValue(ctx, current)
	return err
}
