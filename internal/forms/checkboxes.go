package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

// Member is the state of one checkbox in a group.
type Member struct {
	Value   string
	Checked bool
}

// CheckboxGroup is a set of independently toggled checkboxes keyed by value.
type CheckboxGroup struct {
	node  *browser.Node
	boxes *browser.Resolver
}

func NewCheckboxGroup(n *browser.Node) *CheckboxGroup {
	return &CheckboxGroup{node: n, boxes: n.Find(`input[type="checkbox"]`)}
}

// Boxes returns every member checkbox in page order.
func (g *CheckboxGroup) Boxes(ctx context.Context) ([]*Checkbox, error) {
	nodes, err := g.boxes.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}
	boxes := make([]*Checkbox, len(nodes))
	for i, n := range nodes {
		boxes[i] = NewCheckbox(n)
	}
	return boxes, nil
}

// States returns the value and checked state of every member.
func (g *CheckboxGroup) States(ctx context.Context) ([]Member, error) {
	boxes, err := g.Boxes(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(boxes))
	for _, b := range boxes {
		value, err := b.Value(ctx)
		if err != nil {
			return nil, err
		}
		checked, err := b.State(ctx)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Value: value, Checked: checked})
	}
	return members, nil
}

// SetOne sets the member whose value is key. It reports false when there is
// no such member.
func (g *CheckboxGroup) SetOne(ctx context.Context, key string, state bool) (bool, error) {
	boxes, err := g.Boxes(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range boxes {
		value, err := b.Value(ctx)
		if err != nil {
			return false, err
		}
		if value == key {
			return true, b.Set(ctx, state)
		}
	}
	return false, nil
}

// SetAll sets every member to state.
func (g *CheckboxGroup) SetAll(ctx context.Context, state bool) error {
	boxes, err := g.Boxes(ctx)
	if err != nil {
		return err
	}
	for _, b := range boxes {
		if err := b.Set(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// SetExactly leaves exactly the members named by keys checked: it clears
// the group and then checks each key in turn.
func (g *CheckboxGroup) SetExactly(ctx context.Context, keys []string) error {
	if err := g.SetAll(ctx, false); err != nil {
		return err
	}
	for _, key := range keys {
		found, err := g.SetOne(ctx, key, true)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: checkbox %q", ErrNoSuchOption, key)
		}
	}
	return nil
}

// Demonstrate flips the whole group off, on and off again, then restores
// the original states.
func (g *CheckboxGroup) Demonstrate(ctx context.Context, delay time.Duration) error {
	if err := g.node.ScrollIntoView(ctx); err != nil {
		return err
	}
	original, err := g.States(ctx)
	if err != nil {
		return err
	}
	for _, state := range []bool{false, true, false} {
		if err := g.SetAll(ctx, state); err != nil {
			return err
		}
		if err := pause(ctx, delay); err != nil {
			return err
		}
	}
	for _, m := range original {
		if _, err := g.SetOne(ctx, m.Value, m.Checked); err != nil {
			return err
		}
	}
	return nil
}
