package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/app"
	"github.com/joseph-ayodele/freight-orders/internal/async"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = common.LoadDotEnv()
	cfg := common.LoadConfig()

	var (
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir        = flag.String("dir", "", "directory of order documents to process (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		workers    = flag.Int("workers", cfg.Queue.Workers, "number of parallel workers")
		sinceStr   = flag.String("since", "", "export only orders extracted on or after YYYY-MM-DD")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "orders.xlsx")
	}
	var since time.Time
	if *sinceStr != "" {
		parsed, err := time.Parse(time.DateOnly, *sinceStr)
		if err != nil {
			printError("Error: invalid --since date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		since = parsed
	}
	if *inmem {
		cfg.Database.DSN = ""
		cfg.Database.InMemory = true
	}
	cfg.Queue.Workers = *workers

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var parsed, rejected, failed atomic.Int64
	queue := async.NewProcessorQueue(a.Processor, logger,
		append(async.FromConfig(cfg.Queue), async.WithResultHandler(func(o async.Outcome) {
			switch {
			case o.Err == nil:
				parsed.Add(1)
			case common.IsDocumentError(o.Err):
				rejected.Add(1)
			default:
				failed.Add(1)
			}
		}))...,
	)

	start := time.Now()
	logger.Info("starting batch", "dir", *dir, "workers", cfg.Queue.Workers)
	stats, err := ingest.EnqueueDirectory(ctx, queue, *dir, *skipHidden)
	queue.Shutdown(context.Background())
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("processing complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"enqueued", stats.Enqueued,
		"parsed", parsed.Load(),
		"rejected", rejected.Load(),
		"failed", failed.Load(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	logger.Info("exporting to XLSX", "output", *out)
	xlsx, err := a.Exporter.ExportOrdersXLSX(ctx, since)
	if err != nil {
		logger.Error("failed to export orders", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}
	logger.Info("batch processing complete", "output", *out)

	if failed.Load() > 0 {
		os.Exit(2)
	}
}
