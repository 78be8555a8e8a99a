package supervisor

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/ficwright/internal/config"
)

func freeAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// helperOptions launches this test binary as a fake automation server.
func helperOptions(addr, mode string) Options {
	return Options{
		Binary: os.Args[0],
		Args:   []string{"-test.run=TestHelperProcess", "--"},
		Env: []string{
			"GO_WANT_HELPER_PROCESS=1",
			"HELPER_MODE=" + mode,
			"HELPER_ADDR=" + addr,
		},
		Address:      addr,
		ReadyTimeout: 5 * time.Second,
		StopTimeout:  5 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadyThenStopped", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		addr := freeAddress(t)

		p, err := Start(ctx, helperOptions(addr, "slow"), zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, addr, p.Address())
		assert.Positive(t, p.PID())
		assert.False(t, p.Exited())

		require.NoError(t, p.Stop(ctx))
		assert.True(t, p.Exited())
		assert.NoError(t, p.Stop(ctx), "second stop returns the first result")
	})

	t.Run("AddressInUse", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		_, err = Start(ctx, helperOptions(ln.Addr().String(), "serve"), zaptest.NewLogger(t))
		assert.ErrorIs(t, err, ErrAddressInUse)
	})

	t.Run("ExitsEarly", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		_, err := Start(ctx, helperOptions(freeAddress(t), "exit"), zaptest.NewLogger(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProcessLifecycle)
		assert.Contains(t, err.Error(), "exited before becoming ready")
	})

	t.Run("NeverReady", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		opts := helperOptions(freeAddress(t), "silent")
		opts.ReadyTimeout = 200 * time.Millisecond

		start := time.Now()
		_, err := Start(ctx, opts, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProcessLifecycle)
		assert.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("MissingBinary", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		opts := helperOptions(freeAddress(t), "serve")
		opts.Binary = filepath.Join(t.TempDir(), "no-such-server")
		_, err := Start(ctx, opts, zaptest.NewLogger(t))
		assert.ErrorIs(t, err, ErrProcessLifecycle)
	})

	t.Run("LogSink", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		addr := freeAddress(t)
		opts := helperOptions(addr, "serve")
		opts.LogFile = filepath.Join(t.TempDir(), "server.log")

		p, err := Start(ctx, opts, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NoError(t, p.Stop(ctx))

		data, err := os.ReadFile(opts.LogFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "listening on "+addr)
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Server.LogFile = "/tmp/gecko.log"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "geckodriver", opts.Binary)
	assert.Equal(t, []string{"--host", "127.0.0.1", "--port", "4444"}, opts.Args)
	assert.Equal(t, "127.0.0.1:4444", opts.Address)
	assert.Equal(t, "/tmp/gecko.log", opts.LogFile)
	assert.Equal(t, time.Second, opts.ReadyTimeout)
}

// TestHelperProcess is not a real test. Start runs the test binary with
// HELPER_MODE set and it behaves like an automation server.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	addr := os.Getenv("HELPER_ADDR")

	switch os.Getenv("HELPER_MODE") {
	case "exit":
		fmt.Fprintln(os.Stderr, "fatal: cannot start")
		os.Exit(3)
	case "silent":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	case "slow":
		time.Sleep(100 * time.Millisecond)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("listening on %s\n", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			os.Exit(1)
		}
		conn.Close()
	}
}
