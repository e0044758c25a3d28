package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/extract"
	"github.com/joseph-ayodele/freight-orders/internal/pdftext"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

// LineSource turns documents into text lines.
type LineSource interface {
	Lines(ctx context.Context, path string) ([]string, error)
	LinesFromBytes(ctx context.Context, content []byte) ([]string, error)
}

// Processor coordinates line extraction, order extraction and persistence.
type Processor struct {
	logger      *slog.Logger
	source      LineSource
	pipeline    *extract.Pipeline
	extractions repository.ExtractionRepository
}

// NewProcessor wires a processor. extractions may be nil, in which case
// outcomes are returned but not stored.
func NewProcessor(
	logger *slog.Logger,
	source LineSource,
	pipeline *extract.Pipeline,
	extractions repository.ExtractionRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:      logger,
		source:      source,
		pipeline:    pipeline,
		extractions: extractions,
	}
}

// ProcessFile reads the document at path and extracts its order.
//
// Document failures (unknown layout, malformed content, schema violations)
// are stored as FAILED extractions and returned together with the
// extraction. Infrastructure failures return a nil extraction.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*entity.Extraction, error) {
	filename := filepath.Base(path)
	if err := checkFilename(filename); err != nil {
		return nil, err
	}

	lines, err := p.source.Lines(ctx, path)
	if err != nil {
		p.logger.Error("processor.lines.failed", "path", path, "err", err)
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return p.ProcessLines(ctx, path, filename, lines)
}

// ProcessBytes extracts the order from an uploaded document. Text uploads
// are split directly and never reach the converter.
func (p *Processor) ProcessBytes(ctx context.Context, filename string, content []byte) (*entity.Extraction, error) {
	if err := checkFilename(filename); err != nil {
		return nil, err
	}

	if constants.IsText(filepath.Ext(filename)) {
		return p.ProcessLines(ctx, "upload://"+filename, filename, pdftext.SplitLines(string(content)))
	}

	lines, err := p.source.LinesFromBytes(ctx, content)
	if err != nil {
		p.logger.Error("processor.lines.failed", "filename", filename, "bytes", len(content), "err", err)
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return p.ProcessLines(ctx, "upload://"+filename, filename, lines)
}

// ProcessLines runs the extraction pipeline over already extracted lines
// and records the outcome.
func (p *Processor) ProcessLines(ctx context.Context, sourcePath, filename string, lines []string) (*entity.Extraction, error) {
	res, runErr := p.pipeline.Process(lines, filename)

	out := &entity.Extraction{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Filename:   filename,
		Vendor:     res.Vendor,
		DurationMS: res.Duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if runErr != nil {
		if !common.IsDocumentError(runErr) {
			p.logger.Error("processor.extract.failed", "path", sourcePath, "err", runErr)
			return nil, runErr
		}
		out.Status = constants.ExtractionStatusFailed
		out.ErrorCode = common.ErrorCode(runErr)
		out.ErrorMessage = runErr.Error()
	} else {
		b, err := json.Marshal(res.Record)
		if err != nil {
			return nil, common.NewAppError(common.CodeInternal, "marshal order", err)
		}
		out.Status = constants.ExtractionStatusParsed
		out.OrderReference = res.Record.OrderReference
		out.Record = b
	}

	if p.extractions != nil {
		if err := p.extractions.Save(ctx, out); err != nil {
			return nil, fmt.Errorf("save extraction: %w", err)
		}
	}

	if runErr != nil {
		p.logger.Warn("processor document rejected",
			"extraction_id", out.ID,
			"path", sourcePath,
			"vendor", out.Vendor,
			"code", out.ErrorCode,
		)
		return out, runErr
	}
	p.logger.Info("processor order extracted",
		"extraction_id", out.ID,
		"path", sourcePath,
		"vendor", out.Vendor,
		"order_reference", out.OrderReference,
		"duration_ms", out.DurationMS,
	)
	return out, nil
}

func checkFilename(filename string) error {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return common.NewAppError(common.CodeInvalidInput, fmt.Sprintf("unsupported file type %q", filename), common.ErrInvalidInput)
	}
	return nil
}
