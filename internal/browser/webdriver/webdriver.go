// Package webdriver implements browser.Driver over the W3C WebDriver wire
// protocol using github.com/tebeka/selenium, typically against geckodriver.
package webdriver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/config"
)

const (
	propertyScript       = `return arguments[0][arguments[1]];`
	focusScript          = `arguments[0].focus();`
	scrollIntoViewScript = `arguments[0].scrollIntoView({block: "center"});`
	innerHTMLScript      = `return arguments[0].innerHTML;`

	// Stored cookies are re-added with a long expiry so the browser keeps
	// them for the whole run.
	cookieLifetime = 365 * 24 * time.Hour
)

// remote is the subset of selenium.WebDriver the driver uses.
type remote interface {
	Get(url string) error
	Refresh() error
	CurrentURL() (string, error)
	FindElements(by, value string) ([]selenium.WebElement, error)
	GetCookies() ([]selenium.Cookie, error)
	AddCookie(cookie *selenium.Cookie) error
	Quit() error
	ExecuteScript(script string, args []interface{}) (interface{}, error)
}

// Driver adapts a WebDriver session to browser.Driver.
type Driver struct {
	wd     remote
	logger *zap.Logger
	now    func() time.Time

	// release undoes process-wide client settings made for this session.
	release     func()
	releaseOnce sync.Once
}

var _ browser.Driver = (*Driver)(nil)

func newDriver(wd remote, logger *zap.Logger) *Driver {
	return &Driver{wd: wd, logger: logger, now: time.Now}
}

// call runs a blocking wire request. The selenium client has no context
// support, so a canceled ctx abandons the request; the HTTP client timeout
// bounds how long it can linger.
func call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return wireError(err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wireError maps client errors onto the browser sentinels.
func wireError(err error) error {
	if err == nil {
		return nil
	}
	var se *selenium.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %s: %s", browser.ErrRemoteOperation, se.Err, se.Message)
	}
	var ue *url.Error
	var ne net.Error
	if errors.As(err, &ue) || errors.As(err, &ne) {
		return fmt.Errorf("%w: %w", browser.ErrSessionIO, err)
	}
	return err
}

func (d *Driver) Navigate(ctx context.Context, target string) error {
	return call(ctx, func() error { return d.wd.Get(target) })
}

func (d *Driver) Refresh(ctx context.Context) error {
	return call(ctx, d.wd.Refresh)
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var current string
	err := call(ctx, func() error {
		var err error
		current, err = d.wd.CurrentURL()
		return err
	})
	return current, err
}

func (d *Driver) FindElements(ctx context.Context, selector string) ([]browser.Element, error) {
	var found []selenium.WebElement
	err := call(ctx, func() error {
		var err error
		found, err = d.wd.FindElements(selenium.ByCSSSelector, selector)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d.wrap(found), nil
}

func (d *Driver) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	var raw []selenium.Cookie
	err := call(ctx, func() error {
		var err error
		raw, err = d.wd.GetCookies()
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]browser.Cookie, 0, len(raw))
	for _, c := range raw {
		out = append(out, fromWire(c))
	}
	return out, nil
}

func (d *Driver) AddCookie(ctx context.Context, c browser.Cookie) error {
	wc := toWire(c, d.now().Add(cookieLifetime))
	return call(ctx, func() error { return d.wd.AddCookie(wc) })
}

func (d *Driver) Quit(ctx context.Context) error {
	d.logger.Debug("Deleting WebDriver session.")
	defer d.releaseOnce.Do(func() {
		if d.release != nil {
			d.release()
		}
	})
	return call(ctx, d.wd.Quit)
}

func (d *Driver) wrap(found []selenium.WebElement) []browser.Element {
	out := make([]browser.Element, 0, len(found))
	for _, we := range found {
		out = append(out, &element{we: we, driver: d})
	}
	return out
}

func (d *Driver) script(ctx context.Context, src string, args ...interface{}) (interface{}, error) {
	var res interface{}
	err := call(ctx, func() error {
		var err error
		res, err = d.wd.ExecuteScript(src, args)
		return err
	})
	return res, err
}

func fromWire(c selenium.Cookie) browser.Cookie {
	return browser.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path}
}

func toWire(c browser.Cookie, expires time.Time) *selenium.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &selenium.Cookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: c.Domain,
		Path:   path,
		Expiry: uint(expires.Unix()),
	}
}

// Opener connects to a running WebDriver server and wraps the new browser
// session in a browser.Session.
type Opener struct {
	Config *config.Config
	Logger *zap.Logger
}

// Open creates a WebDriver session against the server listening on address.
func (o Opener) Open(ctx context.Context, address string) (*browser.Session, error) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("webdriver")

	// The selenium client only reads its HTTP client from a package variable.
	// It is swapped for the lifetime of this session and restored on Quit.
	restore := func() {}
	if o.Config.Browser.OperationTimeout > 0 {
		restore = useHTTPClient(&http.Client{Timeout: o.Config.Browser.OperationTimeout})
	}
	caps := selenium.Capabilities{"browserName": o.Config.Browser.BrowserName}
	endpoint := "http://" + address

	var wd selenium.WebDriver
	err := call(ctx, func() error {
		var err error
		wd, err = selenium.NewRemote(caps, endpoint)
		return err
	})
	if err != nil {
		restore()
		return nil, fmt.Errorf("failed to create webdriver session at %s: %w", endpoint, err)
	}
	logger.Debug("WebDriver session created.", zap.String("endpoint", endpoint))

	d := newDriver(wd, logger)
	d.release = restore
	s, err := browser.NewSession(d, o.Config, logger)
	if err != nil {
		_ = wd.Quit()
		restore()
		return nil, err
	}
	return s, nil
}

var httpClientMu sync.Mutex

// useHTTPClient installs c as the selenium client and returns a function
// putting the previous one back.
func useHTTPClient(c *http.Client) func() {
	httpClientMu.Lock()
	defer httpClientMu.Unlock()
	previous := selenium.HTTPClient
	selenium.HTTPClient = c
	return func() {
		httpClientMu.Lock()
		defer httpClientMu.Unlock()
		selenium.HTTPClient = previous
	}
}
