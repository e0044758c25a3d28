package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/assemble"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/extract"
	"github.com/joseph-ayodele/freight-orders/internal/order"
	"github.com/joseph-ayodele/freight-orders/internal/pdftext"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

type stubSource struct {
	lines []string
	err   error
	paths []string
}

func (s *stubSource) Lines(_ context.Context, path string) ([]string, error) {
	s.paths = append(s.paths, path)
	return s.lines, s.err
}

func (s *stubSource) LinesFromBytes(_ context.Context, _ []byte) ([]string, error) {
	return s.lines, s.err
}

func fixtureLines(t *testing.T, name string) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "extract", "testdata", name))
	require.NoError(t, err)
	return strings.Split(string(b), "\n")
}

func newProcessor(t *testing.T, src LineSource) (*Processor, repository.ExtractionRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := repository.Open(context.Background(), common.DatabaseConfig{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(logger) })
	require.NoError(t, db.Migrate(context.Background()))
	repo := repository.NewExtractionRepository(db, logger)

	a, err := assemble.New()
	require.NoError(t, err)
	return NewProcessor(logger, src, extract.NewPipeline(logger, nil, a), repo), repo
}

func TestProcessFileStoresParsedOrder(t *testing.T) {
	src := &stubSource{lines: fixtureLines(t, "ziegler_1.txt")}
	p, repo := newProcessor(t, src)

	got, err := p.ProcessFile(context.Background(), "/inbox/Booking_4500123456.PDF")
	require.NoError(t, err)
	assert.Equal(t, []string{"/inbox/Booking_4500123456.PDF"}, src.paths)
	assert.Equal(t, constants.ExtractionStatusParsed, got.Status)
	assert.Equal(t, "ziegler", got.Vendor)
	assert.Equal(t, "4500123456", got.OrderReference)

	stored, err := repo.Get(context.Background(), got.ID)
	require.NoError(t, err)
	var rec order.Record
	require.NoError(t, json.Unmarshal(stored.Record, &rec))
	assert.Equal(t, []string{"booking_4500123456.pdf"}, rec.AttachmentFilenames)
}

func TestProcessFileStoresRejection(t *testing.T) {
	p, repo := newProcessor(t, &stubSource{lines: []string{"INVOICE", "", "Total 12,00"}})

	got, err := p.ProcessFile(context.Background(), "invoice.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFormatNotRecognized)
	require.NotNil(t, got)
	assert.Equal(t, constants.ExtractionStatusFailed, got.Status)
	assert.Equal(t, common.CodeFormatNotRecognized, got.ErrorCode)
	assert.Empty(t, got.Vendor)

	stored, err := repo.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Record)
}

func TestProcessFileRejectsExtension(t *testing.T) {
	src := &stubSource{}
	p, repo := newProcessor(t, src)

	_, err := p.ProcessFile(context.Background(), "order.docx")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Empty(t, src.paths)

	all, err := repo.List(context.Background(), repository.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProcessFileSourceFailure(t *testing.T) {
	p, repo := newProcessor(t, &stubSource{err: errors.New("pdftotext: exit status 1")})

	got, err := p.ProcessFile(context.Background(), "order.pdf")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.False(t, common.IsDocumentError(err))

	all, err := repo.List(context.Background(), repository.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProcessBytes(t *testing.T) {
	p, _ := newProcessor(t, &stubSource{lines: fixtureLines(t, "skoda_1.txt")})

	got, err := p.ProcessBytes(context.Background(), "LL.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "upload://LL.pdf", got.SourcePath)
	assert.Equal(t, "skoda", got.Vendor)
}

func TestProcessLinesWithoutRepository(t *testing.T) {
	a, err := assemble.New()
	require.NoError(t, err)
	p := NewProcessor(nil, &stubSource{}, extract.NewPipeline(nil, nil, a), nil)

	got, err := p.ProcessLines(context.Background(), "x.txt", "x.txt", fixtureLines(t, "access_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "2024-0815", got.OrderReference)
}

type refusingRunner struct{ t *testing.T }

func (r refusingRunner) Run(context.Context, string, *slog.Logger, ...string) ([]byte, []byte, error) {
	r.t.Error("text upload must not reach pdftotext")
	return nil, nil, errors.New("unexpected pdftotext call")
}

func TestProcessBytesTextUploadSkipsConverter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := pdftext.New(pdftext.Config{Pdftotext: "pdftotext"}, refusingRunner{t: t}, logger)
	p, _ := newProcessor(t, src)

	b, err := os.ReadFile(filepath.Join("..", "extract", "testdata", "access_1.txt"))
	require.NoError(t, err)

	got, err := p.ProcessBytes(context.Background(), "Order.TXT", b)
	require.NoError(t, err)
	assert.Equal(t, "upload://Order.TXT", got.SourcePath)
	assert.Equal(t, "access", got.Vendor)
	assert.Equal(t, "2024-0815", got.OrderReference)
}
