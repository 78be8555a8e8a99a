// internal/browser/session_test.go
package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/browser/browsertest"
)

func TestNewSession(t *testing.T) {
	t.Run("RejectsNilDriver", func(t *testing.T) {
		_, err := browser.NewSession(nil, browsertest.Config(), zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("RejectsNilConfig", func(t *testing.T) {
		_, err := browser.NewSession(browsertest.New(browsertest.HomeHTML), nil, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("NilLoggerIsTolerated", func(t *testing.T) {
		s, err := browser.NewSession(browsertest.New(browsertest.HomeHTML), browsertest.Config(), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID())
		assert.NotNil(t, s.Logger())
	})
}

func TestSession_Navigation(t *testing.T) {
	ctx := context.Background()

	t.Run("VisitResolvesAgainstSiteRoot", func(t *testing.T) {
		fake := browsertest.NewWorkForm()
		s := browsertest.NewSession(t, fake)

		require.NoError(t, s.Visit(ctx, "/works/new"))
		current, err := s.CurrentURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://archive.test/works/new", current)
		assert.Equal(t, "https://archive.test/users/login", s.URL("users/login"))
	})

	t.Run("EpochAdvancesOnNavigateAndRefresh", func(t *testing.T) {
		fake := browsertest.New(browsertest.HomeHTML)
		s := browsertest.NewSession(t, fake)

		start := s.Epoch()
		require.NoError(t, s.Navigate(ctx, "https://archive.test/"))
		assert.Equal(t, start+1, s.Epoch())
		require.NoError(t, s.Refresh(ctx))
		assert.Equal(t, start+2, s.Epoch())
	})

	t.Run("EpochAdvancesEvenWhenNavigationFails", func(t *testing.T) {
		fake := browsertest.New(browsertest.HomeHTML)
		fake.Fail("navigate", errors.New("net::ERR_ABORTED"))
		s := browsertest.NewSession(t, fake)

		start := s.Epoch()
		err := s.Navigate(ctx, "https://archive.test/")
		assert.ErrorIs(t, err, browser.ErrRemoteOperation)
		assert.Equal(t, start+1, s.Epoch())
	})
}

func TestSession_Cookies(t *testing.T) {
	ctx := context.Background()
	fake := browsertest.New(browsertest.HomeHTML)
	s := browsertest.NewSession(t, fake)

	require.NoError(t, s.AddCookie(ctx, browser.Cookie{Name: "_otwarchive_session", Value: "abc"}))
	require.NoError(t, s.AddCookie(ctx, browser.Cookie{Name: "remember_user_token", Value: "xyz"}))
	require.NoError(t, s.AddCookie(ctx, browser.Cookie{Name: "_otwarchive_session", Value: "def"}))

	cookies, err := s.Cookies(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []browser.Cookie{
		{Name: "_otwarchive_session", Value: "def"},
		{Name: "remember_user_token", Value: "xyz"},
	}, cookies)
}

func TestSession_ErrorClassification(t *testing.T) {
	ctx := context.Background()

	t.Run("DriverFailureIsRemoteOperation", func(t *testing.T) {
		fake := browsertest.NewWorkForm()
		s := browsertest.NewSession(t, fake)
		node, err := s.Find(ctx, "#work_title")
		require.NoError(t, err)

		fake.Fail("click", errors.New("element click intercepted"))
		err = node.Click(ctx)
		assert.ErrorIs(t, err, browser.ErrRemoteOperation)
		assert.Contains(t, err.Error(), "click #work_title")
	})

	t.Run("SessionIOIsPreserved", func(t *testing.T) {
		fake := browsertest.New(browsertest.HomeHTML)
		fake.Fail("cookies", browser.ErrSessionIO)
		s := browsertest.NewSession(t, fake)

		_, err := s.Cookies(ctx)
		assert.ErrorIs(t, err, browser.ErrSessionIO)
		assert.NotErrorIs(t, err, browser.ErrRemoteOperation)
	})

	t.Run("CanceledContextShortCircuits", func(t *testing.T) {
		fake := browsertest.New(browsertest.HomeHTML)
		s := browsertest.NewSession(t, fake)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := s.Refresh(canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, fake.Count("refresh"))
	})

	t.Run("StaleHandleFailsRemotely", func(t *testing.T) {
		fake := browsertest.NewWorkForm()
		s := browsertest.NewSession(t, fake)
		node, err := s.Find(ctx, "#work_title")
		require.NoError(t, err)

		require.NoError(t, s.Refresh(ctx))
		err = node.SendKeys(ctx, "late")
		assert.ErrorIs(t, err, browser.ErrRemoteOperation)
		assert.ErrorIs(t, err, browsertest.ErrStaleElement)
	})
}

func TestSession_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("QuitsExactlyOnce", func(t *testing.T) {
		fake := browsertest.New(browsertest.HomeHTML)
		s := browsertest.NewSession(t, fake)

		require.NoError(t, s.Close(ctx))
		require.NoError(t, s.Close(ctx))
		assert.Equal(t, 1, fake.Quits())
	})

	t.Run("ReturnsQuitErrorOnEveryCall", func(t *testing.T) {
		fake := browsertest.New(browsertest.HomeHTML)
		fake.Fail("quit", errors.New("connection reset"))
		s := browsertest.NewSession(t, fake)

		assert.ErrorIs(t, s.Close(ctx), browser.ErrRemoteOperation)
		assert.ErrorIs(t, s.Close(ctx), browser.ErrRemoteOperation)
		assert.Equal(t, 1, fake.Quits())
	})
}

func TestSession_Pacing(t *testing.T) {
	fake := browsertest.NewWorkForm()
	cfg := browsertest.Config()
	cfg.Browser.ActionRate = 50
	cfg.Browser.ActionBurst = 1
	s, err := browser.NewSession(fake, cfg, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	node, err := s.Find(ctx, "#work_title")
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 6; i++ {
		require.NoError(t, node.Focus(ctx))
	}
	// Five waits of 20ms each after the initial token.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
