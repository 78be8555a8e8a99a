// internal/browser/resolver.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xkilldash9x/ficwright/internal/wait"
)

// Resolver lazily looks up a CSS selector, scoped to a parent node or, for
// form roots, to the whole document. Results are memoized. A resolver is
// stamped with the navigation epoch it was created in and refuses to hand
// out handles once the session has navigated or refreshed since.
type Resolver struct {
	session    *Session
	parent     *Node
	selector   string
	epoch      uint64
	allowEmpty bool

	mu       sync.Mutex
	resolved bool
	nodes    []*Node
}

func newResolver(s *Session, parent *Node, selector string, epoch uint64) *Resolver {
	return &Resolver{session: s, parent: parent, selector: selector, epoch: epoch}
}

// AllowEmpty makes an empty ResolveAll result legal and disables polling for
// it. Use it for collections that may legitimately have no members.
func (r *Resolver) AllowEmpty() *Resolver {
	r.allowEmpty = true
	return r
}

// Selector returns the selector being resolved.
func (r *Resolver) Selector() string { return r.selector }

// Stale reports whether the page has changed since the resolver was created.
func (r *Resolver) Stale() bool { return r.epoch != r.session.Epoch() }

// Resolve returns the first matching node.
func (r *Resolver) Resolve(ctx context.Context) (*Node, error) {
	nodes, err := r.resolve(ctx, false)
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

// ResolveAll returns every matching node.
func (r *Resolver) ResolveAll(ctx context.Context) ([]*Node, error) {
	return r.resolve(ctx, r.allowEmpty)
}

func (r *Resolver) resolve(ctx context.Context, allowEmpty bool) ([]*Node, error) {
	if r.Stale() {
		return nil, fmt.Errorf("%w: %s", ErrStaleResolver, r.selector)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved && (allowEmpty || len(r.nodes) > 0) {
		return r.nodes, nil
	}

	nodes, err := r.lookup(ctx)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 && !allowEmpty {
		err = wait.Until(ctx, "element "+r.selector, r.session.elementTimeout, r.session.pollInterval,
			func(ctx context.Context) (bool, error) {
				var err error
				nodes, err = r.lookup(ctx)
				return len(nodes) > 0, err
			})
		if errors.Is(err, wait.ErrTimeout) {
			return nil, fmt.Errorf("%w: %q: %w", ErrElementNotFound, r.selector, err)
		}
		if err != nil {
			return nil, err
		}
	}

	r.nodes = nodes
	r.resolved = true
	return nodes, nil
}

func (r *Resolver) lookup(ctx context.Context) ([]*Node, error) {
	var found []Element
	op := "find " + r.selector
	err := r.session.do(ctx, op, false, func(ctx context.Context) error {
		var err error
		if r.parent == nil {
			found, err = r.session.driver.FindElements(ctx, r.selector)
		} else {
			found, err = r.parent.element.FindElements(ctx, r.selector)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(found))
	for _, el := range found {
		nodes = append(nodes, &Node{session: r.session, element: el, selector: r.selector, epoch: r.epoch})
	}
	return nodes, nil
}
