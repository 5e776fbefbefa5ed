package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"weightnav/internal/buildinfo"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := createRootCommand(ctx, &Input{}, buildinfo.String()).Execute(); err != nil {
		cancel()
		os.Exit(1)
	}
}
