package browsertest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/config"
)

// Config returns a configuration tuned for fast tests: short element
// timeouts, tight polling and no action pacing.
func Config() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Site.BaseURL = "https://archive.test/"
	cfg.Browser.ElementTimeout = 200 * time.Millisecond
	cfg.Browser.PollInterval = 5 * time.Millisecond
	cfg.Browser.OperationTimeout = 5 * time.Second
	cfg.Browser.ActionRate = 0
	return cfg
}

// NewSession wraps f in a session that logs through the test.
func NewSession(tb testing.TB, f *Fake) *browser.Session {
	tb.Helper()
	s, err := browser.NewSession(f, Config(), zaptest.NewLogger(tb))
	require.NoError(tb, err)
	return s
}
