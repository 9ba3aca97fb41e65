// Kestrel - Batch fraud pattern analysis for transaction ledgers.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/pipeline"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg := domain.DefaultConfig().FromEnv()

	input := flag.String("input", "", "transactions CSV path (overrides KESTREL_INPUT)")
	outDir := flag.String("out", "", "report output directory (overrides KESTREL_OUTPUT_DIR)")
	rulesPath := flag.String("rules", "", "custom rules JSON path (overrides KESTREL_RULES)")
	flag.Parse()

	if *input != "" {
		cfg.InputPath = *input
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *rulesPath != "" {
		cfg.RulesPath = *rulesPath
	}

	initLogger(cfg.Logging)

	slog.Info("starting kestrel",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"input", cfg.InputPath,
		"output_dir", cfg.OutputDir,
		"repository", cfg.Repository.Driver,
		"bus", cfg.Bus.Type,
		"dedup", cfg.Dedup.Type,
	)

	p, err := pipeline.New(cfg)
	if err != nil {
		slog.Error("failed to initialize pipeline", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	run, err := p.Run(context.Background())
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("run complete",
		"run_id", run.ID,
		"transactions", run.Transactions,
		"accounts", run.Accounts,
		"fraud_suspected", run.FraudFlagged,
		"duration", run.FinishedAt.Sub(run.StartedAt).String(),
	)

	printSummary(cfg, run)
}

func initLogger(cfg domain.LoggingConfig) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func printSummary(cfg *domain.Config, run *domain.Run) {
	fmt.Println()
	fmt.Printf("  Kestrel %s (run %s)\n", Version, run.ID)
	fmt.Printf("  Input:           %s\n", cfg.InputPath)
	fmt.Printf("  Transactions:    %d across %d accounts\n", run.Transactions, run.Accounts)
	fmt.Printf("  Fraud suspected: %d\n", run.FraudFlagged)
	fmt.Printf("  Reports:         %s/\n", cfg.OutputDir)
	fmt.Println()
}
