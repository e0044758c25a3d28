// Package pdftext turns PDF documents into the plain text lines the vendor
// extractors read, by running the poppler pdftotext converter.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

// Config configures the converter.
type Config struct {
	Pdftotext string
	Timeout   time.Duration
}

// Converter extracts text lines from PDF files.
type Converter struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// New returns a converter. A nil runner runs real subprocesses.
func New(cfg Config, runner Runner, logger *slog.Logger) *Converter {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{cfg: cfg, runner: runner, logger: logger}
}

// FromConfig builds a converter from application configuration.
func FromConfig(cfg common.PDFConfig, logger *slog.Logger) *Converter {
	return New(Config{Pdftotext: cfg.Pdftotext, Timeout: cfg.Timeout}, nil, logger)
}

// Lines returns the text lines of the document at path. Files ending in
// .txt are read as already-extracted text.
func (c *Converter) Lines(ctx context.Context, path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read text %s: %w", path, err)
		}
		return SplitLines(string(b)), nil
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	// pdftotext <path> -
	out, errb, err := c.runner.Run(ctx, c.cfg.Pdftotext, c.logger, path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext %s: %w: %s", filepath.Base(path), err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return SplitLines(string(out)), nil
}

// LinesFromBytes writes content to a temporary file, converts it and
// removes the file again.
func (c *Converter) LinesFromBytes(ctx context.Context, content []byte) ([]string, error) {
	f, err := os.CreateTemp("", "pdf-to-text-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	defer func() {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to remove temp file", "path", name, "error", err)
		}
	}()

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return c.Lines(ctx, name)
}

// SplitLines drops page breaks and splits text on newlines. Lines keep
// their surrounding whitespace.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\f", "")
	return strings.Split(text, "\n")
}
