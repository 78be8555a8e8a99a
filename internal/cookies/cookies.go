// Package cookies persists the authenticated session's cookies between runs
// in a small TOML file holding a single "cookies" table.
package cookies

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

var (
	// ErrNotFound is returned when the cookie file does not exist.
	ErrNotFound = errors.New("cookie file not found")
	// ErrMalformed is returned when the cookie file cannot be parsed.
	ErrMalformed = errors.New("malformed cookie file")
)

// Set maps cookie names to values.
type Set map[string]string

type file struct {
	Cookies Set `toml:"cookies"`
}

// Names returns the cookie names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expand(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand cookie path %q: %w", path, err)
	}
	return expanded, nil
}

// Load reads the cookie file at path.
func Load(path string) (Set, error) {
	expanded, err := expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, expanded)
		}
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	set, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, expanded, err)
	}
	return set, nil
}

func decode(data []byte) (Set, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	table, ok := raw["cookies"].(map[string]interface{})
	if !ok {
		return nil, errors.New("missing cookies table")
	}
	set := make(Set, len(table))
	for name, v := range table {
		value, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("cookie %q is not a string", name)
		}
		set[name] = value
	}
	return set, nil
}

// Save writes set to path with owner-only permissions, replacing any previous content.
func Save(path string, set Set) error {
	expanded, err := expand(path)
	if err != nil {
		return err
	}
	if set == nil {
		set = Set{}
	}
	data, err := toml.Marshal(file{Cookies: set})
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	if dir := filepath.Dir(expanded); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create cookie directory: %w", err)
		}
	}
	if err := os.WriteFile(expanded, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(expanded, 0o600); err != nil {
		return fmt.Errorf("failed to restrict cookie file: %w", err)
	}
	return nil
}

// Remove deletes the cookie file. A missing file is not an error.
func Remove(path string) error {
	expanded, err := expand(path)
	if err != nil {
		return err
	}
	if err := os.Remove(expanded); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cookie file: %w", err)
	}
	return nil
}

// Exists reports whether a cookie file is present at path.
func Exists(path string) bool {
	expanded, err := expand(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(expanded)
	return err == nil && !info.IsDir()
}

// ApplyTo installs every cookie in the session and then refreshes the page,
// since the site only honours cookies sent with a fresh request.
func ApplyTo(ctx context.Context, s *browser.Session, set Set) error {
	for _, name := range set.Names() {
		if err := s.AddCookie(ctx, browser.Cookie{Name: name, Value: set[name], Path: "/"}); err != nil {
			return fmt.Errorf("failed to add cookie %q: %w", name, err)
		}
	}
	s.Logger().Debug("Applied stored cookies.", zap.Int("count", len(set)))
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh after applying cookies: %w", err)
	}
	return nil
}

// FromSession captures the cookies currently held by the session.
func FromSession(ctx context.Context, s *browser.Session) (Set, error) {
	cookies, err := s.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session cookies: %w", err)
	}
	set := make(Set, len(cookies))
	for _, c := range cookies {
		set[c.Name] = c.Value
	}
	return set, nil
}
