package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/orderdesk/recon-console/internal/api"
	"github.com/orderdesk/recon-console/internal/backend"
	"github.com/orderdesk/recon-console/internal/diagnostics"
	"github.com/orderdesk/recon-console/internal/infrastructure/config"
	"github.com/orderdesk/recon-console/internal/infrastructure/storage"
	"github.com/orderdesk/recon-console/internal/observability"
	"github.com/orderdesk/recon-console/internal/workflow"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	logger := observability.NewLogger(
		getEnv("LOG_LEVEL", "info"),
		getEnv("LOG_FORMAT", "json"),
	)

	store, err := config.NewStore(getEnv("CONSOLE_SETTINGS_PATH", "settings.yaml"))
	if err != nil {
		logger.Error("Failed to load settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runs, err := storage.NewStorage(getEnv("CONSOLE_DB_PATH", "console_runs.db"))
	if err != nil {
		logger.Error("Failed to initialize run history storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer runs.Close()

	client := backend.NewClient(store, logger)
	controller := workflow.NewController(store, client, runs, logger)
	runner := diagnostics.NewRunner(store, logger)

	serverCfg := api.DefaultConfig()
	if port, err := strconv.Atoi(getEnv("PORT", "")); err == nil && port > 0 {
		serverCfg.Port = port
	}

	server := api.NewServer(serverCfg, store, controller, client, runner, runs, logger)
	if err := server.Run(); err != nil {
		logger.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
