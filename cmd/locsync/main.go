// Package main provides the entry point for the locsync CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redshield/locsync/cmd/locsync/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
