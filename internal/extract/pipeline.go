package extract

import (
	"log/slog"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/assemble"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// Result is a validated order and the layout it was read with.
type Result struct {
	Vendor   string
	Record   *order.Record
	Duration time.Duration
}

// Pipeline runs dispatch, extraction and assembly for one document at a time.
// It holds no per-document state.
type Pipeline struct {
	logger    *slog.Logger
	registry  Registry
	assembler *assemble.Assembler
}

func NewPipeline(logger *slog.Logger, registry Registry, assembler *assemble.Assembler) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Pipeline{logger: logger, registry: registry, assembler: assembler}
}

// Registry returns the layouts the pipeline dispatches over.
func (p *Pipeline) Registry() Registry { return p.registry }

// Process turns document lines into a validated order. The vendor is
// reported even when extraction or validation fails after dispatch.
func (p *Pipeline) Process(lines []string, filename string) (Result, error) {
	start := time.Now()

	ex, err := p.registry.Dispatch(lines, filename)
	if err != nil {
		p.logger.Warn("extract.dispatch.failed", "filename", filename, "lines", len(lines), "err", err)
		return Result{}, err
	}
	res := Result{Vendor: ex.Name()}
	p.logger.Debug("extract dispatched", "filename", filename, "vendor", res.Vendor)

	rec, err := ex.Extract(lines, filename)
	if err != nil {
		p.logger.Warn("extract.vendor.failed", "filename", filename, "vendor", res.Vendor, "err", err)
		return res, err
	}

	rec, err = p.assembler.Assemble(rec)
	if err != nil {
		p.logger.Warn("extract.assemble.failed", "filename", filename, "vendor", res.Vendor, "err", err)
		return res, err
	}

	res.Record = rec
	res.Duration = time.Since(start)
	p.logger.Info("extract success",
		"filename", filename,
		"vendor", res.Vendor,
		"order_reference", rec.OrderReference,
		"cargos", len(rec.Cargos),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
