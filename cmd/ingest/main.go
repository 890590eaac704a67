// Command ingest walks a data folder once, loads every session it finds and
// prints the run report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ganot/hrv-ingest/internal/app"
	"github.com/ganot/hrv-ingest/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 2
	}

	root := flag.String("root", cfg.Ingest.Root, "data folder to ingest")
	flag.Parse()

	// stdout carries the report.
	logger, closeLog, err := app.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		return 2
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 2
	}
	defer a.Close()

	rep, err := a.Pipeline.Run(ctx, *root)
	if err != nil {
		logger.Error("ingestion aborted", "root", *root, "error", err)
		return 2
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		logger.Error("failed to write report", "error", err)
		return 2
	}

	logger.Info("ingestion finished", "run_id", rep.RunID, "counts", rep.Counts())
	if rep.Failed() {
		return 1
	}
	return 0
}
