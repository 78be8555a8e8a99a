// Package cdp implements browser.Driver over the Chrome DevTools Protocol
// using chromedp, against a Chromium started with a remote debugging port.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"net"

	cdproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/config"
)

// Driver runs browser.Driver operations in one chromedp tab.
type Driver struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *zap.Logger
}

var _ browser.Driver = (*Driver)(nil)

// run executes actions in the tab, bounded by ctx.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := CombineContext(d.tab, ctx)
	defer cancel()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return wireError(err)
}

func wireError(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return fmt.Errorf("%w: %w", browser.ErrSessionIO, err)
	}
	return err
}

func (d *Driver) Navigate(ctx context.Context, target string) error {
	return d.run(ctx, chromedp.Navigate(target))
}

func (d *Driver) Refresh(ctx context.Context) error {
	return d.run(ctx, chromedp.Reload())
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var location string
	err := d.run(ctx, chromedp.Location(&location))
	return location, err
}

func (d *Driver) FindElements(ctx context.Context, selector string) ([]browser.Element, error) {
	return d.query(ctx, selector)
}

// query returns every node matching selector, optionally below parent.
// AtLeast(0) makes an empty match return at once instead of polling.
func (d *Driver) query(ctx context.Context, selector string, opts ...chromedp.QueryOption) ([]browser.Element, error) {
	var nodes []*cdproto.Node
	opts = append([]chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}, opts...)
	if err := d.run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, err
	}
	out := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{node: n, driver: d})
	}
	return out, nil
}

func (d *Driver) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	var out []browser.Cookie
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		out = fromWire(cookies)
		return nil
	}))
	return out, err
}

func (d *Driver) AddCookie(ctx context.Context, c browser.Cookie) error {
	var location string
	return d.run(ctx,
		chromedp.Location(&location),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return setCookieParams(c, location).Do(ctx)
		}),
	)
}

// Quit closes the tab and drops the connection. The browser process itself
// belongs to the supervisor.
func (d *Driver) Quit(ctx context.Context) error {
	d.logger.Debug("Closing DevTools tab.")
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(d.tab) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	d.cancelTab()
	d.cancelAlloc()
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return nil
	}
	return err
}

func fromWire(cookies []*network.Cookie) []browser.Cookie {
	out := make([]browser.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, browser.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	return out
}

// setCookieParams builds the protocol request for c. Without an explicit
// domain the cookie is scoped to the page at location.
func setCookieParams(c browser.Cookie, location string) *network.SetCookieParams {
	path := c.Path
	if path == "" {
		path = "/"
	}
	p := network.SetCookie(c.Name, c.Value).WithPath(path)
	if c.Domain != "" {
		return p.WithDomain(c.Domain)
	}
	return p.WithURL(location)
}

// Opener attaches to a Chromium remote debugging endpoint and wraps a new
// tab in a browser.Session.
type Opener struct {
	Config *config.Config
	Logger *zap.Logger
}

// Open connects to the DevTools endpoint at address and opens a tab.
func (o Opener) Open(ctx context.Context, address string) (*browser.Session, error) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("cdp")
	endpoint := "http://" + address

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(Detach(ctx), endpoint)
	tab, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Errorf),
	)
	d := &Driver{tab: tab, cancelTab: cancelTab, cancelAlloc: cancelAlloc, logger: logger}

	// The first Run creates the target and ties it to tab, so it must not
	// run under a derived context.
	connected := make(chan error, 1)
	go func() { connected <- chromedp.Run(tab) }()
	select {
	case err := <-connected:
		if err != nil {
			cancelTab()
			cancelAlloc()
			return nil, fmt.Errorf("failed to attach to devtools endpoint %s: %w", endpoint, wireError(err))
		}
	case <-ctx.Done():
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to attach to devtools endpoint %s: %w", endpoint, ctx.Err())
	}
	logger.Debug("DevTools tab attached.", zap.String("endpoint", endpoint))

	s, err := browser.NewSession(d, o.Config, logger)
	if err != nil {
		_ = d.Quit(context.Background())
		return nil, err
	}
	return s, nil
}
