// Command web serves the investment dashboard: the JSON chart API, the
// static page, Prometheus metrics and the websocket channel that tells
// open pages when a new cleaned dataset has been published.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"vcpulse/internal/app"
	"vcpulse/internal/config"
	"vcpulse/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "config file path (defaults to config.yaml if present)")
	port := flag.Int("port", 0, "listen port override")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
