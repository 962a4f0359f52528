// Command report-server serves the report generator over HTTP.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clientreport/internal/app"
	"clientreport/internal/config"
	"clientreport/internal/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config.yaml (defaults to the first one found)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		return 1
	}
	defer infrastructure.CloseLogFile()

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
