package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/fic"
)

// Plan is the set difference a reconcile acted on.
type Plan struct {
	Remove []string
	Add    []string
}

// Empty reports whether the plan required no action.
func (p Plan) Empty() bool { return len(p.Remove) == 0 && len(p.Add) == 0 }

// Entry is one committed chip of an Autocomplete.
type Entry struct {
	Name string
	node *browser.Node
}

// Delete clicks the chip's delete control.
func (e Entry) Delete(ctx context.Context) error {
	link, err := e.node.Find("span.delete > a").Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to find delete control for %q: %w", e.Name, err)
	}
	return link.Click(ctx)
}

// Autocomplete is a free text input with a growing list of committed chips.
type Autocomplete struct {
	node  *browser.Node
	input *browser.Resolver
}

func NewAutocomplete(n *browser.Node) *Autocomplete {
	return &Autocomplete{node: n, input: n.Find(`li.input > input.text[type="text"]`)}
}

// Entries returns the committed chips. Chips change with every add and
// remove, so they are looked up afresh on each call.
func (a *Autocomplete) Entries(ctx context.Context) ([]Entry, error) {
	nodes, err := a.node.Find("li.added.tag").AllowEmpty().ResolveAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		markup, err := n.InnerHTML(ctx)
		if err != nil {
			return nil, err
		}
		name, err := chipName(markup)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, node: n})
	}
	return entries, nil
}

// List returns the names of the committed chips in page order.
func (a *Autocomplete) List(ctx context.Context) (fic.OrderedSet, error) {
	entries, err := a.Entries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return fic.NewOrderedSet(names...), nil
}

// Add types name into the input and commits it with Tab.
func (a *Autocomplete) Add(ctx context.Context, name string) error {
	field, err := resolveWith(ctx, a.input, NewTextField)
	if err != nil {
		return err
	}
	return field.Append(ctx, name, browser.KeyTab)
}

// Remove deletes every chip called name and reports whether one existed.
func (a *Autocomplete) Remove(ctx context.Context, name string) (bool, error) {
	entries, err := a.Entries(ctx)
	if err != nil {
		return false, err
	}
	found := false
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		found = true
		if err := e.Delete(ctx); err != nil {
			return found, err
		}
	}
	return found, nil
}

// RemoveAll deletes every chip.
func (a *Autocomplete) RemoveAll(ctx context.Context) error {
	entries, err := a.Entries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := e.Delete(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile brings the committed chips to desired. Chips not desired are
// deleted, desired names not yet committed are added in desired order, and
// chips in both are left alone. A second call with the same input is a no-op.
func (a *Autocomplete) Reconcile(ctx context.Context, desired fic.OrderedSet) (Plan, error) {
	entries, err := a.Entries(ctx)
	if err != nil {
		return Plan{}, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	current := fic.NewOrderedSet(names...)
	desired = fic.NewOrderedSet(desired...)

	plan := Plan{
		Remove: current.Difference(desired),
		Add:    desired.Difference(current),
	}

	for _, e := range entries {
		if !plan.hasRemoval(e.Name) {
			continue
		}
		if err := e.Delete(ctx); err != nil {
			return plan, err
		}
	}
	for _, name := range plan.Add {
		if err := a.Add(ctx, name); err != nil {
			return plan, fmt.Errorf("failed to add %q: %w", name, err)
		}
	}
	return plan, nil
}

func (p Plan) hasRemoval(name string) bool {
	return fic.OrderedSet(p.Remove).Contains(name)
}

// Demonstrate replaces the chips with samples and then restores the originals.
func (a *Autocomplete) Demonstrate(ctx context.Context, samples []string, delay time.Duration) error {
	if err := a.node.ScrollIntoView(ctx); err != nil {
		return err
	}
	original, err := a.List(ctx)
	if err != nil {
		return err
	}
	if err := a.RemoveAll(ctx); err != nil {
		return err
	}
	for _, s := range samples {
		if err := pause(ctx, delay); err != nil {
			return err
		}
		if err := a.Add(ctx, s); err != nil {
			return err
		}
	}
	if err := pause(ctx, delay); err != nil {
		return err
	}
	if err := a.RemoveAll(ctx); err != nil {
		return err
	}
	for _, name := range original {
		if err := a.Add(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

var errNoDeleteSpan = errors.New("chip markup has no delete control")

// chipName extracts the entry name from a chip's markup: the text that
// precedes its <span class="delete"> child.
func chipName(markup string) (string, error) {
	parent := &html.Node{Type: html.ElementNode, Data: "li", DataAtom: atom.Li}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return "", fmt.Errorf("failed to parse chip markup: %w", err)
	}

	var sb strings.Builder
	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.Span && hasClass(n, "delete") {
			return strings.TrimSpace(sb.String()), nil
		}
		collectText(n, &sb)
	}
	return "", fmt.Errorf("%w: %q", errNoDeleteSpan, markup)
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
