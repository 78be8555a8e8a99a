// internal/browser/driver.go
package browser

import "context"

// Key is a non-printable key that widgets press after typing.
type Key int

const (
	KeyTab Key = iota + 1
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyTab:
		return "Tab"
	case KeyEnter:
		return "Enter"
	default:
		return "Unknown"
	}
}

// Cookie is the portable subset of a browser cookie that survives between runs.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// Driver is the capability object a wire backend provides for one remote
// browser. Implementations live in the webdriver and cdp subpackages.
//
// FindElements returns an empty slice, not an error, when nothing matches.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	FindElements(ctx context.Context, selector string) ([]Element, error)
	Cookies(ctx context.Context) ([]Cookie, error)
	AddCookie(ctx context.Context, c Cookie) error
	Quit(ctx context.Context) error
}

// Element is an opaque handle to a remote DOM node. It is only meaningful
// inside the session that produced it and becomes stale once the page changes.
//
// Property reads a DOM property rendered as a string; boolean properties
// come back as "true" or "false", absent ones as "".
type Element interface {
	FindElements(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	Focus(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	PressKey(ctx context.Context, key Key) error
	Property(ctx context.Context, name string) (string, error)
	InnerHTML(ctx context.Context) (string, error)
	Interactable(ctx context.Context) (bool, error)
	ScrollIntoView(ctx context.Context) error
}
