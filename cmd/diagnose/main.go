// Command diagnose runs the connectivity probe sequence against a
// reconciliation backend from the terminal, without starting the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/orderdesk/recon-console/internal/diagnostics"
	"github.com/orderdesk/recon-console/internal/infrastructure/config"
	"github.com/orderdesk/recon-console/internal/observability"
)

func main() {
	var (
		baseURL   = flag.String("base-url", "", "Backend base URL (default from settings/env)")
		timeoutMs = flag.Int("timeout-ms", 0, "Per-probe timeout in milliseconds (0 = settings default)")
		corsOnly  = flag.Bool("cors", false, "Run only the cross-origin probes")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	_ = godotenv.Load()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := observability.NewLogger(level, "text")

	// In-memory store only, the CLI never persists settings.
	store, err := config.NewStore("")
	if err != nil {
		logger.Error("Failed to build settings", slog.String("error", err.Error()))
		os.Exit(1)
	}
	patch := config.APIPatch{}
	if *baseURL != "" {
		patch.BaseURL = baseURL
	}
	if *timeoutMs > 0 {
		patch.TimeoutMs = timeoutMs
	}
	if _, err := store.UpdateAPI(patch); err != nil {
		logger.Error("Failed to apply settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runner := diagnostics.NewRunner(store, logger)

	var results []diagnostics.Result
	if *corsOnly {
		results = runner.DetectCORSIssues(context.Background())
	} else {
		results = runner.RunFull(context.Background())
	}

	fmt.Printf("Checking backend at %s\n\n", store.Get().API.BaseURL)

	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Success {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %-16s %s\n", status, r.Step, r.Message)
		if r.Fix != "" {
			fmt.Printf("       fix: %s\n", r.Fix)
		}
	}

	fmt.Printf("\n%d/%d checks passed\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}
