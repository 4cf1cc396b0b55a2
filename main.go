// Package main is the entry point for the bidscheck CLI application.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/eykd/bidscheck/cmd"
)

func main() {
	// Cancel the walk on SIGINT (Ctrl+C).
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.ExecuteContext(ctx)
	cancel()
	os.Exit(code)
}
