// Package main provides the linevox CLI process entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/linevox/internal/app"
)

// main cancels the daemon on SIGINT/SIGTERM so it can finish the running
// series and remove its socket.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
