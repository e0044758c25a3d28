package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

type fakeProcessor struct {
	err      error
	path     string
	filename string
	content  []byte
	lines    []string
}

func (f *fakeProcessor) extraction(filename string) *entity.Extraction {
	return &entity.Extraction{
		ID:             uuid.New(),
		Filename:       filename,
		Vendor:         "access",
		Status:         constants.ExtractionStatusParsed,
		OrderReference: "T-1",
		Record:         json.RawMessage(`{"order_reference":"T-1"}`),
	}
}

func (f *fakeProcessor) ProcessFile(_ context.Context, path string) (*entity.Extraction, error) {
	f.path = path
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction(filepath.Base(path)), nil
}

func (f *fakeProcessor) ProcessBytes(_ context.Context, filename string, content []byte) (*entity.Extraction, error) {
	f.filename, f.content = filename, content
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction(filename), nil
}

func (f *fakeProcessor) ProcessLines(_ context.Context, _, filename string, lines []string) (*entity.Extraction, error) {
	f.filename, f.lines = filename, lines
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction(filename), nil
}

type fakeExporter struct{ since time.Time }

func (f *fakeExporter) ExportOrdersXLSX(_ context.Context, since time.Time) ([]byte, error) {
	f.since = since
	return []byte("xlsx"), nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func storage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.pdf"), []byte("%PDF"), 0o644))
	return dir
}

func newTestRouter(proc DocumentProcessor, dir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(HTTPConfig{Processor: proc, StorageDir: dir, Exporter: &fakeExporter{}, Logger: quiet()})
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestProcessPDF(t *testing.T) {
	dir := storage(t)
	proc := &fakeProcessor{}
	w := postJSON(newTestRouter(proc, dir), "/process-pdf", `{"filename":"order.pdf"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"order_reference": "T-1"}, body["result"])
	assert.Equal(t, filepath.Join(dir, "order.pdf"), proc.path)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestProcessPDFRejectsBadInput(t *testing.T) {
	dir := storage(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"not json", `nope`, http.StatusBadRequest},
		{"missing name", `{}`, http.StatusBadRequest},
		{"not a pdf", `{"filename":"order.txt"}`, http.StatusBadRequest},
		{"traversal", `{"filename":"../order.pdf"}`, http.StatusBadRequest},
		{"subdirectory", `{"filename":"a/order.pdf"}`, http.StatusBadRequest},
		{"missing file", `{"filename":"other.pdf"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			w := postJSON(newTestRouter(proc, dir), "/process-pdf", tt.body)
			assert.Equal(t, tt.code, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			assert.Empty(t, proc.path)
		})
	}
}

func TestProcessPDFDocumentError(t *testing.T) {
	proc := &fakeProcessor{err: common.FormatNotRecognized("order.pdf")}
	w := postJSON(newTestRouter(proc, storage(t)), "/process-pdf", `{"filename":"order.pdf"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, common.CodeFormatNotRecognized, body["code"])
}

func TestUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "upload.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	proc := &fakeProcessor{}
	req := httptest.NewRequest(http.MethodPost, "/v1/orders/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newTestRouter(proc, t.TempDir()).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upload.pdf", proc.filename)
	assert.Equal(t, []byte("%PDF-1.4"), proc.content)
}

func TestUploadWithoutFile(t *testing.T) {
	w := postJSON(newTestRouter(&fakeProcessor{}, t.TempDir()), "/v1/orders/upload", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportRoute(t *testing.T) {
	exp := &fakeExporter{}
	gin.SetMode(gin.TestMode)
	r := NewRouter(HTTPConfig{Processor: &fakeProcessor{}, Exporter: exp, Logger: quiet()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/export?since=2024-02-01", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xlsx", w.Body.String())
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), exp.since)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orders/export?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func linesRequest(t *testing.T, filename string, lines ...any) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{"filename": filename, "lines": lines})
	require.NoError(t, err)
	return req
}

func TestOrderServiceExtractLines(t *testing.T) {
	proc := &fakeProcessor{}
	svc := NewOrderService(proc, t.TempDir(), quiet())

	out, err := svc.ExtractLines(context.Background(), linesRequest(t, "a.pdf", "first", "second"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, proc.lines)
	assert.Equal(t, "access", out.GetFields()["vendor"].GetStringValue())
	assert.Equal(t, "T-1", out.GetFields()["record"].GetStructValue().GetFields()["order_reference"].GetStringValue())
}

func TestOrderServiceErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(&fakeProcessor{}, storage(t), quiet())

	_, err := svc.ExtractLines(ctx, linesRequest(t, "a.pdf"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.ExtractLines(ctx, linesRequest(t, "a.pdf", 12.0))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	req, _ := structpb.NewStruct(map[string]any{"filename": "missing.pdf"})
	_, err = svc.ExtractFile(ctx, req)
	assert.Equal(t, codes.NotFound, status.Code(err))

	failing := NewOrderService(&fakeProcessor{err: common.MalformedDocument("access", "Tournumber:", "")}, storage(t), quiet())
	req, _ = structpb.NewStruct(map[string]any{"filename": "order.pdf"})
	_, err = failing.ExtractFile(ctx, req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCServerRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	proc := &fakeProcessor{}
	srv, _ := NewGRPCServer(NewOrderService(proc, t.TempDir(), quiet()), quiet())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/orders.v1.OrderService/ExtractLines", linesRequest(t, "b.pdf", "only"), out)
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", proc.filename)
	assert.Equal(t, "PARSED", out.GetFields()["status"].GetStringValue())
}
