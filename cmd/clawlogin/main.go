// File: cmd/clawlogin/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/clawlogin/cmd"
)

// Allows mocking os.Exit in tests.
var osExit = os.Exit

func main() {
	// SIGINT/SIGTERM cancel the run and tear down the browser.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	osExit(run(ctx))
}

// run executes the CLI and maps the outcome to a process exit status:
// 0 on success, 1 on any error, including an interrupted run.
func run(ctx context.Context) int {
	if err := cmd.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
