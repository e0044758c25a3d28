package main

import (
	"log/slog"
	"os"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

func slogToStderr(cfg common.LogConfig) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}
