package cookies

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/browser/browsertest"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		set  Set
	}{
		{"Empty", Set{}},
		{"Single", Set{"_otwarchive_session": "abc123"}},
		{"SpecialCharacters", Set{
			"remember_user_token": "W1sxMjM0NV0sIiQyYSQxMCJd--0f1e2d",
			"user_credentials":    "1",
			"quoted":              `va"lue with spaces`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ao3.cookie")
			require.NoError(t, Save(path, tt.set))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.set, loaded)
		})
	}
}

func TestSave(t *testing.T) {
	t.Run("OverwritesAndRestrictsMode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ao3.cookie")
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

		require.NoError(t, Save(path, Set{"a": "1"}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Set{"a": "1"}, loaded)
	})

	t.Run("CreatesParentDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "ao3.cookie")
		require.NoError(t, Save(path, Set{"a": "1"}))
		assert.True(t, Exists(path))
	})
}

func TestLoad(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ao3.cookie")
		require.NoError(t, os.WriteFile(path, []byte("cookies = [not toml"), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("NonStringValue", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ao3.cookie")
		require.NoError(t, os.WriteFile(path, []byte("[cookies]\nsession = 5\n"), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("MissingTable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ao3.cookie")
		require.NoError(t, os.WriteFile(path, []byte("other = 1\n"), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("ExpandsHome", func(t *testing.T) {
		homedir.DisableCache = true
		t.Cleanup(func() { homedir.DisableCache = false })
		home := t.TempDir()
		t.Setenv("HOME", home)

		require.NoError(t, Save("~/.ao3.cookie", Set{"a": "1"}))
		assert.FileExists(t, filepath.Join(home, ".ao3.cookie"))

		loaded, err := Load("~/.ao3.cookie")
		require.NoError(t, err)
		assert.Equal(t, Set{"a": "1"}, loaded)
	})
}

func TestRemoveAndExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ao3.cookie")
	assert.False(t, Exists(path))
	require.NoError(t, Remove(path), "removing a missing file is fine")

	require.NoError(t, Save(path, Set{"a": "1"}))
	assert.True(t, Exists(path))
	require.NoError(t, Remove(path))
	assert.False(t, Exists(path))
}

func TestApplyToAndFromSession(t *testing.T) {
	ctx := context.Background()
	fake := browsertest.New(browsertest.HomeHTML)
	s := browsertest.NewSession(t, fake)
	epoch := s.Epoch()

	set := Set{"b_cookie": "2", "a_cookie": "1"}
	require.NoError(t, ApplyTo(ctx, s, set))

	events := fake.Events()
	require.Len(t, events, 3)
	assert.Equal(t, browsertest.Event{Kind: "cookie", Target: "a_cookie", Text: "1"}, events[0])
	assert.Equal(t, browsertest.Event{Kind: "cookie", Target: "b_cookie", Text: "2"}, events[1])
	assert.Equal(t, "refresh", events[2].Kind, "cookies are only honoured after a refresh")
	assert.Greater(t, s.Epoch(), epoch)

	captured, err := FromSession(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, set, captured)

	for _, c := range fake.CookieJar() {
		assert.Equal(t, "/", c.Path)
	}
}

func TestApplyTo_FailureStopsBeforeRefresh(t *testing.T) {
	ctx := context.Background()
	fake := browsertest.New(browsertest.HomeHTML)
	fake.Fail("addcookie", browser.ErrSessionIO)
	s := browsertest.NewSession(t, fake)

	err := ApplyTo(ctx, s, Set{"a": "1"})
	assert.ErrorIs(t, err, browser.ErrSessionIO)
	assert.Zero(t, fake.Count("refresh"))
}
