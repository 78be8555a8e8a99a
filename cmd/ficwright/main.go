// File: cmd/ficwright/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/ficwright/cmd"
	"github.com/xkilldash9x/ficwright/internal/observability"
)

const panicLogFile = "ficwright-panic.log"

// Replaced in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	defer handlePanic()

	// SIGINT cancels the current operation; the orchestrator still tears
	// down the browser and the automation server.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		osExit(1)
	}
}

// handlePanic records an unexpected panic with its stack and exits non-zero.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	message := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(message), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to write panic log: %v\n%s\n", err, message)
		osExit(1)
		return
	}
	fmt.Fprintf(os.Stderr, "ficwright crashed. Details logged to %s\n", panicLogFile)
	osExit(2)
}
