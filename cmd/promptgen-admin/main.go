package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/promptgen/internal/logger"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "promptgen-admin",
	})
	logger.SetDefaultLogger(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
