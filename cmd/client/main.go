package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/jobtrackr/jobtrackr-go/internal/client/cli"
	"github.com/jobtrackr/jobtrackr-go/internal/client/config"
	"github.com/jobtrackr/jobtrackr-go/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLevel(cfg.LogLevel),
	})
	log := logging.NewSlogLogger(slog.New(handler))

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start client", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
