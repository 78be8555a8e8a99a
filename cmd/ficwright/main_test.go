// File: cmd/ficwright/main_test.go
package main

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	var (
		written []byte
		code    = -1
	)
	osExit = func(c int) { code = c }

	t.Run("WritesPanicLog", func(t *testing.T) {
		osWriteFile = func(name string, data []byte, perm fs.FileMode) error {
			assert.Equal(t, panicLogFile, name)
			written = data
			return nil
		}
		func() {
			defer handlePanic()
			panic("boom")
		}()
		assert.Equal(t, 2, code)
		assert.Contains(t, string(written), "panic: boom")
		assert.Contains(t, string(written), "goroutine")
	})

	t.Run("LogWriteFails", func(t *testing.T) {
		osWriteFile = func(string, []byte, fs.FileMode) error { return errors.New("read-only") }
		func() {
			defer handlePanic()
			panic("boom")
		}()
		assert.Equal(t, 1, code)
	})

	t.Run("NoPanic", func(t *testing.T) {
		code = -1
		func() {
			defer handlePanic()
		}()
		require.Equal(t, -1, code)
	})
}
