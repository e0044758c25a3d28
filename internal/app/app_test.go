package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

func memoryConfig() *common.Config {
	cfg := common.LoadConfig()
	cfg.Database.DSN = ""
	cfg.Database.InMemory = true
	cfg.Schema.Path = ""
	return cfg
}

func TestNewProcessesAndExports(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(ctx, memoryConfig(), logger)
	require.NoError(t, err)
	defer a.Close()

	ext, err := a.Processor.ProcessFile(ctx, filepath.Join("..", "extract", "testdata", "ziegler_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ziegler", ext.Vendor)

	rows, err := a.Extractions.List(ctx, repository.ListFilter{Status: constants.ExtractionStatusParsed})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ext.ID, rows[0].ID)

	data, err := a.Exporter.ExportOrdersXLSX(ctx, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestNewRejectsMissingSchemaFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.Schema.Path = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Queue.Workers = 0

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
}
