// Ledgergen - Synthetic transaction ledger generator for Kestrel.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opensource-finance/kestrel/internal/dataset"
)

func main() {
	defaults := dataset.DefaultGeneratorConfig()

	out := flag.String("out", "data/transactions.csv", "output CSV path")
	transactions := flag.Int("transactions", defaults.Transactions, "number of transactions")
	accounts := flag.Int("accounts", defaults.Accounts, "number of accounts")
	days := flag.Int("days", defaults.Days, "trailing window in days")
	seed := flag.Int64("seed", defaults.Seed, "random seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := dataset.GeneratorConfig{
		Transactions: *transactions,
		Accounts:     *accounts,
		Days:         *days,
		Seed:         *seed,
	}

	table := dataset.Generate(cfg)

	if dir := filepath.Dir(*out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create output directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := dataset.WriteCSV(f, table); err != nil {
		slog.Error("failed to write ledger", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		slog.Error("failed to close output file", "path", *out, "error", err)
		os.Exit(1)
	}

	slog.Info("ledger generated",
		"path", *out,
		"transactions", table.Len(),
		"accounts", table.AccountCount(),
		"seed", *seed,
	)
}
