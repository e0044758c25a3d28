package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// created_at is stored as fixed-width UTC text so it sorts the same way in
// every dialect.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const extractionColumns = `id, source_path, filename, vendor, status, error_code, error_message,
	order_reference, record_json, duration_ms, created_at`

type ExtractionRepository interface {
	Save(ctx context.Context, e *entity.Extraction) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Extraction, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Extraction, error)
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Status constants.ExtractionStatus
	Vendor string
	Since  time.Time
	Limit  int
}

type extractionRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewExtractionRepository(db *DB, logger *slog.Logger) ExtractionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionRepo{db: db, logger: logger}
}

// Save inserts e, assigning an id and creation time when unset.
func (r *extractionRepo) Save(ctx context.Context, e *entity.Extraction) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Microsecond)

	var record any
	if len(e.Record) > 0 {
		record = string(e.Record)
	}

	query := r.db.Rebind(`INSERT INTO extractions (` + extractionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.SQL.ExecContext(ctx, query,
		e.ID.String(), e.SourcePath, e.Filename, e.Vendor, string(e.Status),
		e.ErrorCode, e.ErrorMessage, e.OrderReference, record, e.DurationMS,
		e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		r.logger.Error("failed to save extraction", "extraction_id", e.ID, "path", e.SourcePath, "error", err)
		return common.NewAppError(common.CodeDatabase, "save extraction", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("extraction saved", "extraction_id", e.ID, "status", e.Status)
	return nil
}

func (r *extractionRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Extraction, error) {
	query := r.db.Rebind(`SELECT ` + extractionColumns + ` FROM extractions WHERE id = ?`)
	row := r.db.SQL.QueryRowContext(ctx, query, id.String())
	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, "extraction "+id.String(), common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get extraction", "extraction_id", id, "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "get extraction", errors.Join(common.ErrDatabase, err))
	}
	return e, nil
}

// List returns matching extractions, oldest first.
func (r *extractionRepo) List(ctx context.Context, filter ListFilter) ([]*entity.Extraction, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Vendor != "" {
		where = append(where, "vendor = ?")
		args = append(args, filter.Vendor)
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := `SELECT ` + extractionColumns + ` FROM extractions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.SQL.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to list extractions", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "list extractions", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, common.NewAppError(common.CodeDatabase, "scan extraction", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "list extractions", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(s scanner) (*entity.Extraction, error) {
	var (
		e       entity.Extraction
		id      string
		status  string
		record  sql.NullString
		created string
	)
	if err := s.Scan(&id, &e.SourcePath, &e.Filename, &e.Vendor, &status, &e.ErrorCode,
		&e.ErrorMessage, &e.OrderReference, &record, &e.DurationMS, &created); err != nil {
		return nil, err
	}

	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.Status = constants.ExtractionStatus(status)
	if record.Valid {
		e.Record = []byte(record.String)
	}
	return &e, nil
}
