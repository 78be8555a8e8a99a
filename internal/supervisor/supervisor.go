// Package supervisor owns the automation server child process: it refuses to
// start when the endpoint is already taken, polls the endpoint for readiness
// and guarantees the process is killed and reaped exactly once.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ficwright/internal/config"
	"github.com/xkilldash9x/ficwright/internal/wait"
)

var (
	// ErrProcessLifecycle is returned when the server fails to start, exits
	// early or does not exit when stopped.
	ErrProcessLifecycle = errors.New("automation server lifecycle failure")
	// ErrAddressInUse is returned when something already answers on the endpoint.
	ErrAddressInUse = errors.New("automation server address already in use")
)

var dial = func(ctx context.Context, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", address)
}

// Options describe how to launch and supervise the server.
type Options struct {
	Binary       string
	Args         []string
	Env          []string
	Address      string
	LogFile      string
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
	PollInterval time.Duration
}

// OptionsFromConfig derives launch options for the configured backend.
func OptionsFromConfig(cfg *config.Config) Options {
	binary, args := cfg.ServerCommand()
	return Options{
		Binary:       binary,
		Args:         args,
		Env:          cfg.Server.Env,
		Address:      cfg.Server.Address,
		LogFile:      cfg.Server.LogFile,
		ReadyTimeout: cfg.Server.ReadyTimeout,
		StopTimeout:  cfg.Server.StopTimeout,
		PollInterval: cfg.Browser.PollInterval,
	}
}

// Process is a running automation server.
type Process struct {
	opts   Options
	logger *zap.Logger
	cmd    *exec.Cmd
	sink   io.Closer

	done    chan struct{}
	waitErr error

	stopOnce sync.Once
	stopErr  error
}

// Start launches the server and returns once its endpoint accepts
// connections.
func Start(ctx context.Context, opts Options, logger *zap.Logger) (*Process, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("supervisor").With(zap.String("address", opts.Address))

	if inUse(ctx, opts.Address) {
		return nil, fmt.Errorf("%w: %s", ErrAddressInUse, opts.Address)
	}

	p := &Process{opts: opts, logger: logger, done: make(chan struct{})}

	cmd := exec.Command(opts.Binary, opts.Args...)
	cmd.Env = append(os.Environ(), opts.Env...)
	if opts.LogFile != "" {
		path, err := config.ExpandPath(opts.LogFile)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open server log %s: %w", path, err)
		}
		cmd.Stdout = f
		cmd.Stderr = f
		p.sink = f
	}
	p.cmd = cmd

	logger.Info("Starting automation server.", zap.String("binary", opts.Binary), zap.Strings("args", opts.Args))
	if err := cmd.Start(); err != nil {
		p.closeSink()
		return nil, fmt.Errorf("%w: failed to start %s: %w", ErrProcessLifecycle, opts.Binary, err)
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	err := wait.Until(ctx, "automation server at "+opts.Address, opts.ReadyTimeout, opts.PollInterval,
		func(ctx context.Context) (bool, error) {
			select {
			case <-p.done:
				return false, fmt.Errorf("%w: %s exited before becoming ready: %v", ErrProcessLifecycle, opts.Binary, p.waitErr)
			default:
			}
			return inUse(ctx, opts.Address), nil
		})
	if err != nil {
		if stopErr := p.Stop(context.Background()); stopErr != nil {
			logger.Warn("Failed to stop automation server after failed start.", zap.Error(stopErr))
		}
		if !errors.Is(err, ErrProcessLifecycle) {
			err = fmt.Errorf("%w: %w", ErrProcessLifecycle, err)
		}
		return nil, err
	}

	logger.Debug("Automation server is ready.", zap.Int("pid", cmd.Process.Pid))
	return p, nil
}

func inUse(ctx context.Context, address string) bool {
	conn, err := dial(ctx, address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Address returns the endpoint the server listens on.
func (p *Process) Address() string { return p.opts.Address }

// PID returns the process id.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Exited reports whether the process has already terminated.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Stop kills the process and waits for it to be reaped. Later calls return
// the result of the first.
func (p *Process) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		defer p.closeSink()
		if p.Exited() {
			p.logger.Debug("Automation server already exited.", zap.NamedError("exit", p.waitErr))
			return
		}
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.stopErr = fmt.Errorf("%w: failed to kill %s: %w", ErrProcessLifecycle, p.opts.Binary, err)
			return
		}

		timeout := p.opts.StopTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-p.done:
			p.logger.Info("Automation server stopped.")
		case <-timer.C:
			p.stopErr = fmt.Errorf("%w: %s did not exit within %v", ErrProcessLifecycle, p.opts.Binary, timeout)
		case <-ctx.Done():
			p.stopErr = fmt.Errorf("%w: waiting for %s: %w", ErrProcessLifecycle, p.opts.Binary, ctx.Err())
		}
	})
	return p.stopErr
}

func (p *Process) closeSink() {
	if p.sink == nil {
		return
	}
	if err := p.sink.Close(); err != nil {
		p.logger.Warn("Failed to close server log.", zap.Error(err))
	}
}
