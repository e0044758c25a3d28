// Package export renders stored orders as XLSX workbooks.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/order"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

const (
	ordersSheet = "Orders"
	stopsSheet  = "Stops"
	cargosSheet = "Cargos"
)

var (
	orderHeaders = []string{
		"Order Reference", "Vendor", "Customer", "Customer Country", "Transport Numbers",
		"Freight Price", "Freight Currency", "Customer Number", "Source File", "Extracted At",
	}
	stopHeaders = []string{
		"Order Reference", "Kind", "Company", "Street", "Postal Code", "City", "Country",
		"From", "To",
	}
	cargoHeaders = []string{
		"Order Reference", "Title", "Number", "Package Count", "Package Type",
		"Weight (kg)", "LDM", "Volume", "Width", "Length", "Height",
	}
)

// Service produces XLSX bytes for stored extractions.
type Service struct {
	extractions repository.ExtractionRepository
	logger      *slog.Logger
}

func NewService(repo repository.ExtractionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractions: repo, logger: logger}
}

// ExportOrdersXLSX returns a workbook of every parsed order created at or
// after since. A zero since exports everything.
func (s *Service) ExportOrdersXLSX(ctx context.Context, since time.Time) ([]byte, error) {
	start := time.Now()

	rows, err := s.extractions.List(ctx, repository.ListFilter{
		Status: constants.ExtractionStatusParsed,
		Since:  since,
	})
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	w, err := newWorkbook(f)
	if err != nil {
		return nil, err
	}

	skipped := 0
	for _, e := range rows {
		var rec order.Record
		if err := json.Unmarshal(e.Record, &rec); err != nil {
			s.logger.Warn("export.record.unreadable", "id", e.ID.String(), "err", err)
			skipped++
			continue
		}
		w.addOrder(e, &rec)
	}
	w.finish()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"orders", len(rows)-skipped,
		"skipped", skipped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type workbook struct {
	f    *excelize.File
	next map[string]int
}

func newWorkbook(f *excelize.File) (*workbook, error) {
	// NewFile starts with Sheet1; reuse it as the first sheet.
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return nil, err
	}
	for _, name := range []string{stopsSheet, cargosSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	idx, _ := f.GetSheetIndex(ordersSheet)
	f.SetActiveSheet(idx)

	w := &workbook{f: f, next: map[string]int{}}
	w.append(ordersSheet, toAny(orderHeaders)...)
	w.append(stopsSheet, toAny(stopHeaders)...)
	w.append(cargosSheet, toAny(cargoHeaders)...)
	return w, nil
}

func (w *workbook) append(sheet string, values ...any) {
	row := w.next[sheet] + 1
	w.next[sheet] = row
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = w.f.SetCellValue(sheet, cell, v)
	}
}

func (w *workbook) addOrder(e *entity.Extraction, rec *order.Record) {
	ref := rec.OrderReference
	w.append(ordersSheet,
		ref,
		e.Vendor,
		rec.Customer.Details.Company,
		deref(rec.Customer.Details.Country),
		rec.TransportNumbers,
		floatCell(rec.FreightPrice),
		rec.FreightCurrency,
		rec.CustomerNumber,
		e.Filename,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	for _, loc := range rec.LoadingLocations {
		w.addStop(ref, "loading", loc)
	}
	for _, loc := range rec.DestinationLocations {
		w.addStop(ref, "unloading", loc)
	}
	for _, c := range rec.Cargos {
		w.append(cargosSheet,
			ref,
			c.Title,
			c.Number,
			c.PackageCount,
			string(c.PackageType),
			floatCell(c.Weight),
			floatCell(c.Ldm),
			floatCell(c.Volume),
			floatCell(c.PkgWidth),
			floatCell(c.PkgLength),
			floatCell(c.PkgHeight),
		)
	}
}

func (w *workbook) addStop(ref, kind string, loc order.Location) {
	a := loc.CompanyAddress
	from, to := "", ""
	if loc.Time != nil {
		from = loc.Time.From.Format(time.RFC3339)
		if loc.Time.To != nil {
			to = loc.Time.To.Format(time.RFC3339)
		}
	}
	w.append(stopsSheet, ref, kind, a.Company, a.StreetAddress, a.PostalCode, a.City, deref(a.Country), from, to)
}

func (w *workbook) finish() {
	_ = w.f.SetColWidth(ordersSheet, "A", "A", 18)
	_ = w.f.SetColWidth(ordersSheet, "C", "C", 32)
	_ = w.f.SetColWidth(ordersSheet, "E", "E", 24)
	_ = w.f.SetColWidth(ordersSheet, "I", "J", 28)
	_ = w.f.SetColWidth(stopsSheet, "C", "D", 32)
	_ = w.f.SetColWidth(stopsSheet, "H", "I", 26)
	_ = w.f.SetColWidth(cargosSheet, "B", "B", 32)
}

func floatCell(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
