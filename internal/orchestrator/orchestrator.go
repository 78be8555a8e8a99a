// internal/orchestrator/orchestrator.go
// Description: Runs one live-session command between a guaranteed start and a
// guaranteed teardown of the automation server and its browser session.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/browser"
	"github.com/xkilldash9x/ficwright/internal/supervisor"
)

// ErrCommandPanic wraps a panic raised while a command was executing.
var ErrCommandPanic = errors.New("command panicked")

// Server is a running automation server.
type Server interface {
	Address() string
	Stop(ctx context.Context) error
}

// Launcher starts the automation server.
type Launcher interface {
	Launch(ctx context.Context) (Server, error)
}

// SessionOpener opens a browser session against a server endpoint.
type SessionOpener interface {
	Open(ctx context.Context, address string) (*browser.Session, error)
}

// Command is the live-session logic of one CLI command.
type Command interface {
	Name() string
	Execute(ctx context.Context, s *browser.Session) error
}

// Preparer is implemented by commands with local work to do once the session
// is open and before Execute, such as loading a document.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithTransitionHook registers fn to observe every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(r *Runner) { r.onTransition = fn }
}

// WithTeardownTimeout bounds the teardown steps, which run on a fresh context.
func WithTeardownTimeout(d time.Duration) Option {
	return func(r *Runner) { r.teardownTimeout = d }
}

// Runner drives a Command through the state machine.
type Runner struct {
	launcher        Launcher
	opener          SessionOpener
	logger          *zap.Logger
	teardownTimeout time.Duration
	onTransition    func(from, to State)

	mu    sync.Mutex
	state State
}

// New creates a Runner with its collaborators.
func New(launcher Launcher, opener SessionOpener, logger *zap.Logger, opts ...Option) (*Runner, error) {
	if launcher == nil || opener == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize runner with nil dependencies")
	}
	r := &Runner{
		launcher:        launcher,
		opener:          opener,
		logger:          logger.Named("orchestrator"),
		teardownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// State returns the current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) transition(to State) {
	r.mu.Lock()
	from := r.state
	r.state = to
	r.mu.Unlock()

	r.logger.Debug("State transition.", zap.Stringer("from", from), zap.Stringer("to", to))
	if r.onTransition != nil {
		r.onTransition(from, to)
	}
}

// Run executes cmd. Once the server has been launched, teardown runs on every
// exit path, including a panic in the command, and its failures are logged
// rather than returned.
func (r *Runner) Run(ctx context.Context, cmd Command) (err error) {
	logger := r.logger.With(zap.String("command", cmd.Name()))

	r.transition(ServerStarting)
	srv, err := r.launcher.Launch(ctx)
	if err != nil {
		r.transition(TearingDown)
		r.transition(Done)
		return fmt.Errorf("failed to start automation server: %w", err)
	}

	var session *browser.Session
	defer func() {
		rec := recover()
		if rec != nil {
			logger.Error("Command panicked.", zap.Any("panic", rec), zap.ByteString("stack", debug.Stack()))
		}
		r.teardown(logger, session, srv)
		if rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrCommandPanic, cmd.Name(), rec)
		}
	}()

	r.transition(SessionOpen)
	session, err = r.opener.Open(ctx, srv.Address())
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	logger = logger.With(zap.String("session_id", session.ID()))

	if p, ok := cmd.(Preparer); ok {
		r.transition(Preparing)
		if err := p.Prepare(ctx); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
	}

	// The site is only loaded once local preparation has succeeded.
	if err := session.Visit(ctx, "/"); err != nil {
		return fmt.Errorf("failed to open site: %w", err)
	}
	r.transition(Executing)
	logger.Info("Executing command.")
	if err := cmd.Execute(ctx, session); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}

func (r *Runner) teardown(logger *zap.Logger, session *browser.Session, srv Server) {
	r.transition(TearingDown)
	ctx, cancel := context.WithTimeout(context.Background(), r.teardownTimeout)
	defer cancel()

	if session != nil {
		if err := session.Close(ctx); err != nil {
			logger.Warn("Failed to quit browser session.", zap.Error(err))
		}
	}
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("Failed to stop automation server.", zap.Error(err))
	}
	r.transition(Done)
}

// ProcessLauncher launches the server as a supervised child process.
type ProcessLauncher struct {
	Options supervisor.Options
	Logger  *zap.Logger
}

func (l ProcessLauncher) Launch(ctx context.Context) (Server, error) {
	p, err := supervisor.Start(ctx, l.Options, l.Logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}
