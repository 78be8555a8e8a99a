package forms

import (
	"context"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/fic"
)

// GatedAutocomplete is an autocomplete list hidden behind a checkbox. The gate
// is opened before the first entry is added and closed after the last one
// is removed.
type GatedAutocomplete struct {
	gate *browser.Resolver
	list *browser.Resolver
}

func NewGatedAutocomplete(gate, list *browser.Resolver) *GatedAutocomplete {
	return &GatedAutocomplete{gate: gate, list: list}
}

func (g *GatedAutocomplete) Gate(ctx context.Context) (*Checkbox, error) {
	return resolveWith(ctx, g.gate, NewCheckbox)
}

func (g *GatedAutocomplete) List(ctx context.Context) (*Autocomplete, error) {
	return resolveWith(ctx, g.list, NewAutocomplete)
}

// Set reconciles the list to desired, toggling the gate at the boundaries.
func (g *GatedAutocomplete) Set(ctx context.Context, desired fic.OrderedSet) (Plan, error) {
	gate, err := g.Gate(ctx)
	if err != nil {
		return Plan{}, err
	}
	open, err := gate.State(ctx)
	if err != nil {
		return Plan{}, err
	}

	switch {
	case len(desired) == 0 && !open:
		return Plan{}, nil

	case len(desired) == 0 && open:
		list, err := g.List(ctx)
		if err != nil {
			return Plan{}, err
		}
		plan, err := list.Reconcile(ctx, nil)
		if err != nil {
			return plan, err
		}
		return plan, gate.Set(ctx, false)

	default:
		if !open {
			if err := gate.Set(ctx, true); err != nil {
				return Plan{}, err
			}
		}
		list, err := g.List(ctx)
		if err != nil {
			return Plan{}, err
		}
		return list.Reconcile(ctx, desired)
	}
}

// GatedTextField is a text area revealed by a presence checkbox. A nil text
// means absent: the field is cleared and the gate closed.
type GatedTextField struct {
	gate  *browser.Resolver
	field *browser.Resolver
}

func NewGatedTextField(gate, field *browser.Resolver) *GatedTextField {
	return &GatedTextField{gate: gate, field: field}
}

func (g *GatedTextField) Set(ctx context.Context, text *string) error {
	gate, err := resolveWith(ctx, g.gate, NewCheckbox)
	if err != nil {
		return err
	}
	open, err := gate.State(ctx)
	if err != nil {
		return err
	}

	switch {
	case text == nil && !open:
		return nil

	case text == nil && open:
		field, err := resolveWith(ctx, g.field, NewTextField)
		if err != nil {
			return err
		}
		if err := field.Clear(ctx); err != nil {
			return err
		}
		return gate.Set(ctx, false)

	default:
		if !open {
			if err := gate.Set(ctx, true); err != nil {
				return err
			}
		}
		field, err := resolveWith(ctx, g.field, NewTextField)
		if err != nil {
			return err
		}
		return field.SetText(ctx, *text)
	}
}
