// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/ficwright/internal/config"
)

// Session is the single live connection to a remote browser for one command
// invocation. Remote operations are strictly sequential: every call takes the
// session mutex, and mutating calls are additionally paced by a rate limiter.
type Session struct {
	id      string
	driver  Driver
	logger  *zap.Logger
	baseURL *url.URL

	elementTimeout   time.Duration
	pollInterval     time.Duration
	operationTimeout time.Duration
	limiter          *rate.Limiter

	// epoch counts navigations and refreshes. Resolvers compare against it.
	epoch atomic.Uint64

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewSession wraps a connected driver.
func NewSession(driver Driver, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	if driver == nil {
		return nil, errors.New("browser driver cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site base url %q: %w", cfg.Site.BaseURL, err)
	}

	id := uuid.New().String()
	s := &Session{
		id:               id,
		driver:           driver,
		logger:           logger.Named("session").With(zap.String("session_id", id)),
		baseURL:          base,
		elementTimeout:   cfg.Browser.ElementTimeout,
		pollInterval:     cfg.Browser.PollInterval,
		operationTimeout: cfg.Browser.OperationTimeout,
	}
	if cfg.Browser.ActionRate > 0 {
		burst := cfg.Browser.ActionBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Browser.ActionRate), burst)
	}
	return s, nil
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string { return s.id }

// Logger returns the session scoped logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// Epoch returns the current navigation epoch.
func (s *Session) Epoch() uint64 { return s.epoch.Load() }

// ElementTimeout is how long resolvers wait for a selector to match.
func (s *Session) ElementTimeout() time.Duration { return s.elementTimeout }

// PollInterval is the delay between readiness checks.
func (s *Session) PollInterval() time.Duration { return s.pollInterval }

// OperationTimeout bounds a single remote operation and page transitions.
func (s *Session) OperationTimeout() time.Duration { return s.operationTimeout }

// Invalidate advances the epoch after the page changed without a Navigate,
// for example when a click submitted a form.
func (s *Session) Invalidate() { s.epoch.Add(1) }

// do runs one remote operation under the session lock.
func (s *Session) do(ctx context.Context, op string, mutating bool, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if mutating && s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	opCtx := ctx
	if s.operationTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, s.operationTimeout)
		defer cancel()
	}
	return classify(op, fn(opCtx))
}

// URL resolves path against the configured site root.
func (s *Session) URL(path string) string {
	ref, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return s.baseURL.String()
	}
	return s.baseURL.ResolveReference(ref).String()
}

// Navigate loads target. The navigation epoch is advanced even when the
// driver reports an error, since the page may have changed regardless.
func (s *Session) Navigate(ctx context.Context, target string) error {
	s.logger.Debug("Navigating.", zap.String("url", target))
	defer s.epoch.Add(1)
	return s.do(ctx, "navigate", true, func(ctx context.Context) error {
		return s.driver.Navigate(ctx, target)
	})
}

// Visit navigates to a path relative to the site root.
func (s *Session) Visit(ctx context.Context, path string) error {
	return s.Navigate(ctx, s.URL(path))
}

// Refresh reloads the current page and invalidates outstanding resolvers.
func (s *Session) Refresh(ctx context.Context) error {
	s.logger.Debug("Refreshing page.")
	defer s.epoch.Add(1)
	return s.do(ctx, "refresh", true, func(ctx context.Context) error {
		return s.driver.Refresh(ctx)
	})
}

// CurrentURL reports the location of the active page.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var current string
	err := s.do(ctx, "current url", false, func(ctx context.Context) error {
		var err error
		current, err = s.driver.CurrentURL(ctx)
		return err
	})
	return current, err
}

// Cookies returns every cookie visible to the active page.
func (s *Session) Cookies(ctx context.Context) ([]Cookie, error) {
	var cookies []Cookie
	err := s.do(ctx, "get cookies", false, func(ctx context.Context) error {
		var err error
		cookies, err = s.driver.Cookies(ctx)
		return err
	})
	return cookies, err
}

// AddCookie installs c for the active page's site.
func (s *Session) AddCookie(ctx context.Context, c Cookie) error {
	return s.do(ctx, "add cookie", true, func(ctx context.Context) error {
		return s.driver.AddCookie(ctx, c)
	})
}

// Resolver returns a document scoped resolver. Only form roots and page level
// controls should be looked up this way; everything else is found relative to
// a resolved node.
func (s *Session) Resolver(selector string) *Resolver {
	return newResolver(s, nil, selector, s.Epoch())
}

// Find resolves the first element matching selector in the whole document.
func (s *Session) Find(ctx context.Context, selector string) (*Node, error) {
	return s.Resolver(selector).Resolve(ctx)
}

// Close quits the remote browser. Only the first call reaches the driver;
// later calls return the same result.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session.")
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.driver.Quit(ctx); err != nil {
			s.closeErr = classify("quit", err)
		}
	})
	return s.closeErr
}
