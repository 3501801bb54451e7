package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/kashifsb/envsetup/internal/install"
	"github.com/kashifsb/envsetup/pkg/logger"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(ctx).Execute(); err != nil {
		logger.Error("Command execution failed", "error", err.Error())
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failed command to a process exit status.
func exitCode(err error) int {
	var spawnErr *install.SpawnError
	switch {
	case errors.As(err, &spawnErr):
		return 127 // Command not found
	case errors.Is(err, context.DeadlineExceeded):
		return 124 // Timeout exit code
	case errors.Is(err, os.ErrPermission):
		return 126 // Permission denied
	case errors.Is(err, context.Canceled):
		return 130 // Interrupted
	default:
		return 1 // General error
	}
}
