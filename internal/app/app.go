// Package app wires the order extraction stack from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/freight-orders/internal/assemble"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/core"
	"github.com/joseph-ayodele/freight-orders/internal/export"
	"github.com/joseph-ayodele/freight-orders/internal/extract"
	"github.com/joseph-ayodele/freight-orders/internal/pdftext"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

// App holds the long-lived components shared by the binaries.
type App struct {
	Config      *common.Config
	DB          *repository.DB
	Extractions repository.ExtractionRepository
	Processor   *core.Processor
	Exporter    *export.Service
	logger      *slog.Logger
}

// NewLogger returns a JSON logger at the configured level and installs it
// as the default.
func NewLogger(cfg common.LogConfig) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}

// New opens the database, applies migrations and builds the processor.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	assembler, err := newAssembler(cfg.Schema)
	if err != nil {
		return nil, err
	}

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close(logger)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	extractions := repository.NewExtractionRepository(db, logger)
	pipeline := extract.NewPipeline(logger, extract.DefaultRegistry(), assembler)
	source := pdftext.FromConfig(cfg.PDF, logger)

	logger.Info("app ready",
		"dialect", db.Dialect,
		"vendors", pipeline.Registry().Names(),
		"contract", assembler.ContractID(),
	)
	return &App{
		Config:      cfg,
		DB:          db,
		Extractions: extractions,
		Processor:   core.NewProcessor(logger, source, pipeline, extractions),
		Exporter:    export.NewService(extractions, logger),
		logger:      logger,
	}, nil
}

func newAssembler(cfg common.SchemaConfig) (*assemble.Assembler, error) {
	if cfg.Path == "" {
		return assemble.New()
	}
	a, err := assemble.NewFromFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load order schema %q: %w", cfg.Path, err)
	}
	return a, nil
}

// Close releases the database.
func (a *App) Close() {
	a.DB.Close(a.logger)
}
