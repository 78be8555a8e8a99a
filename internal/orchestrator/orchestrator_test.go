// internal/orchestrator/orchestrator_test.go
package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/browser/browsertest"
	"github.com/xkilldash9x/ficwright/internal/mocks"
	"github.com/xkilldash9x/ficwright/internal/orchestrator"
)

const address = "127.0.0.1:4444"

type harness struct {
	fake     *browsertest.Fake
	session  *browser.Session
	server   *mocks.MockServer
	launcher *mocks.MockLauncher
	opener   *mocks.MockSessionOpener
	runner   *orchestrator.Runner
	states   []orchestrator.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fake:     browsertest.New(browsertest.HomeHTML),
		server:   new(mocks.MockServer),
		launcher: new(mocks.MockLauncher),
		opener:   new(mocks.MockSessionOpener),
	}
	h.session = browsertest.NewSession(t, h.fake)

	h.server.On("Address").Return(address)
	h.launcher.On("Launch", mock.Anything).Return(h.server, nil)
	h.opener.On("Open", mock.Anything, address).Return(h.session, nil)

	runner, err := orchestrator.New(h.launcher, h.opener, zaptest.NewLogger(t),
		orchestrator.WithTransitionHook(func(_, to orchestrator.State) {
			h.states = append(h.states, to)
		}))
	require.NoError(t, err)
	h.runner = runner
	return h
}

// assertTornDown checks the session was quit and the server stopped exactly once.
func (h *harness) assertTornDown(t *testing.T) {
	t.Helper()
	assert.Equal(t, 1, h.fake.Quits(), "session quit")
	h.server.AssertNumberOfCalls(t, "Stop", 1)
	assert.Equal(t, orchestrator.Done, h.runner.State())
}

type panicCommand struct{}

func (panicCommand) Name() string { return "panic" }

func (panicCommand) Execute(context.Context, *browser.Session) error { panic("boom") }

func TestNew(t *testing.T) {
	_, err := orchestrator.New(nil, new(mocks.MockSessionOpener), zap.NewNop())
	assert.Error(t, err)
	_, err = orchestrator.New(new(mocks.MockLauncher), nil, zap.NewNop())
	assert.Error(t, err)
	_, err = orchestrator.New(new(mocks.MockLauncher), new(mocks.MockSessionOpener), nil)
	assert.Error(t, err)
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("PreparedCommand", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(nil)

		var order []string
		cmd := new(mocks.MockPreparedCommand)
		cmd.On("Name").Return("post-new")
		cmd.On("Prepare", mock.Anything).Run(func(mock.Arguments) {
			order = append(order, "prepare")
			assert.Zero(t, h.fake.Count("navigate"))
		}).Return(nil)
		cmd.On("Execute", mock.Anything, h.session).Run(func(mock.Arguments) {
			order = append(order, "execute")
		}).Return(nil)

		require.NoError(t, h.runner.Run(ctx, cmd))

		assert.Equal(t, []orchestrator.State{
			orchestrator.ServerStarting,
			orchestrator.SessionOpen,
			orchestrator.Preparing,
			orchestrator.Executing,
			orchestrator.TearingDown,
			orchestrator.Done,
		}, h.states)
		assert.Equal(t, []string{"prepare", "execute"}, order)
		assert.Equal(t, "https://archive.test/", h.fake.Location())
		h.assertTornDown(t)
		cmd.AssertExpectations(t)
	})

	t.Run("CommandWithoutPreparation", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(nil)
		cmd := new(mocks.MockCommand)
		cmd.On("Name").Return("look")
		cmd.On("Execute", mock.Anything, h.session).Return(nil)

		require.NoError(t, h.runner.Run(ctx, cmd))
		assert.NotContains(t, h.states, orchestrator.Preparing)
		h.assertTornDown(t)
	})

	t.Run("ExecuteError", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(nil)
		failure := errors.New("widget failed")
		cmd := new(mocks.MockCommand)
		cmd.On("Name").Return("post-new")
		cmd.On("Execute", mock.Anything, h.session).Return(failure)

		err := h.runner.Run(ctx, cmd)
		assert.ErrorIs(t, err, failure)
		h.assertTornDown(t)
	})

	t.Run("PrepareError", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(nil)
		failure := errors.New("malformed document")
		cmd := new(mocks.MockPreparedCommand)
		cmd.On("Name").Return("post-new")
		cmd.On("Prepare", mock.Anything).Return(failure)

		err := h.runner.Run(ctx, cmd)
		assert.ErrorIs(t, err, failure)
		cmd.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		assert.Zero(t, h.fake.Count("navigate"), "site loaded before preparation succeeded")
		h.assertTornDown(t)
	})

	t.Run("ExecutePanics", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(nil)

		err := h.runner.Run(ctx, panicCommand{})
		require.Error(t, err)
		assert.ErrorIs(t, err, orchestrator.ErrCommandPanic)
		assert.Contains(t, err.Error(), "boom")
		h.assertTornDown(t)
	})

	t.Run("LaunchFails", func(t *testing.T) {
		h := newHarness(t)
		failure := errors.New("address in use")
		launcher := new(mocks.MockLauncher)
		launcher.On("Launch", mock.Anything).Return(nil, failure)
		runner, err := orchestrator.New(launcher, h.opener, zap.NewNop())
		require.NoError(t, err)
		cmd := new(mocks.MockCommand)
		cmd.On("Name").Return("login")

		err = runner.Run(ctx, cmd)
		assert.ErrorIs(t, err, failure)
		h.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
		assert.Equal(t, orchestrator.Done, runner.State())
	})

	t.Run("OpenFails", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(nil)
		failure := errors.New("session refused")
		opener := new(mocks.MockSessionOpener)
		opener.On("Open", mock.Anything, address).Return(nil, failure)
		runner, err := orchestrator.New(h.launcher, opener, zap.NewNop())
		require.NoError(t, err)
		cmd := new(mocks.MockCommand)
		cmd.On("Name").Return("login")

		err = runner.Run(ctx, cmd)
		assert.ErrorIs(t, err, failure)
		h.server.AssertNumberOfCalls(t, "Stop", 1)
		assert.Zero(t, h.fake.Quits())
	})

	t.Run("TeardownErrorsAreNotPropagated", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.Anything).Return(errors.New("kill failed"))
		h.fake.Fail("quit", errors.New("connection reset"))
		cmd := new(mocks.MockCommand)
		cmd.On("Name").Return("look")
		cmd.On("Execute", mock.Anything, h.session).Return(nil)

		require.NoError(t, h.runner.Run(ctx, cmd))
		h.assertTornDown(t)
	})

	t.Run("TeardownUsesFreshContext", func(t *testing.T) {
		h := newHarness(t)
		h.server.On("Stop", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil
		})).Return(nil)

		runCtx, cancel := context.WithCancel(ctx)
		cmd := new(mocks.MockCommand)
		cmd.On("Name").Return("look")
		cmd.On("Execute", mock.Anything, h.session).Run(func(mock.Arguments) {
			cancel()
		}).Return(context.Canceled)

		err := h.runner.Run(runCtx, cmd)
		assert.ErrorIs(t, err, context.Canceled)
		h.assertTornDown(t)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ServerStarting", orchestrator.ServerStarting.String())
	assert.Equal(t, "Done", orchestrator.Done.String())
	assert.Equal(t, "State(42)", orchestrator.State(42).String())
}
