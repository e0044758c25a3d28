// Package server exposes order extraction over gRPC and HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// DocumentProcessor is the processing surface the servers need.
type DocumentProcessor interface {
	ProcessFile(ctx context.Context, path string) (*entity.Extraction, error)
	ProcessBytes(ctx context.Context, filename string, content []byte) (*entity.Extraction, error)
	ProcessLines(ctx context.Context, sourcePath, filename string, lines []string) (*entity.Extraction, error)
}

// OrderService implements orders.v1.OrderService.
type OrderService struct {
	proc       DocumentProcessor
	storageDir string
	logger     *slog.Logger
}

func NewOrderService(proc DocumentProcessor, storageDir string, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{proc: proc, storageDir: storageDir, logger: logger}
}

// ExtractLines runs the pipeline over lines supplied by the caller.
// Request: {"filename": string, "lines": [string]}.
func (s *OrderService) ExtractLines(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	filename := strings.TrimSpace(fields["filename"].GetStringValue())

	v := common.NewValidator().
		Field("filename", filename, common.Required, common.PlainFilename).
		Field("lines", fields["lines"].GetListValue().GetValues(), common.NonEmpty)
	if err := v.AsInputError(); err != nil {
		return nil, common.ToStatus(err)
	}

	values := fields["lines"].GetListValue().GetValues()
	lines := make([]string, 0, len(values))
	for i, val := range values {
		str, ok := val.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, common.InvalidArgumentErrorf("lines[%d] must be a string", i)
		}
		lines = append(lines, str.StringValue)
	}

	s.logger.Info("grpc.extract_lines", "filename", filename, "lines", len(lines))
	ext, err := s.proc.ProcessLines(ctx, "lines://"+filename, filename, lines)
	return s.respond(ext, err)
}

// ExtractFile processes a document stored in the storage directory.
// Request: {"filename": string}.
func (s *OrderService) ExtractFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filename := strings.TrimSpace(req.GetFields()["filename"].GetStringValue())
	path, err := ResolveStoredFile(s.storageDir, filename)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	s.logger.Info("grpc.extract_file", "filename", filename)
	ext, err := s.proc.ProcessFile(ctx, path)
	return s.respond(ext, err)
}

func (s *OrderService) respond(ext *entity.Extraction, err error) (*structpb.Struct, error) {
	if err != nil {
		s.logger.Warn("grpc.extract.failed", "code", common.ErrorCode(err), "err", err)
		return nil, common.ToStatus(err)
	}
	out, err := extractionStruct(ext)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func extractionStruct(ext *entity.Extraction) (*structpb.Struct, error) {
	b, err := json.Marshal(ext)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// ResolveStoredFile validates a client supplied PDF name and returns its
// path inside dir.
func ResolveStoredFile(dir, filename string) (string, error) {
	v := common.NewValidator().
		Field("filename", filename, common.Required, common.HasSuffix(".pdf"), common.PlainFilename)
	if err := v.AsInputError(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, filename)
	if rel, err := filepath.Rel(dir, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", common.NewAppError(common.CodeInvalidInput, "filename escapes storage directory", common.ErrInvalidInput)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", common.NewAppError(common.CodeNotFound, fmt.Sprintf("file %q not found", filename), common.ErrNotFound)
	}
	return path, nil
}
