package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

const (
	requestIDHeader  = "X-Request-ID"
	defaultMaxUpload = 32 << 20
)

// Exporter renders stored orders as a workbook.
type Exporter interface {
	ExportOrdersXLSX(ctx context.Context, since time.Time) ([]byte, error)
}

// HTTPConfig wires the HTTP API. Extractions and Exporter are optional;
// their routes answer 404 when unset.
type HTTPConfig struct {
	Processor   DocumentProcessor
	Extractions repository.ExtractionRepository
	Exporter    Exporter
	StorageDir  string
	MaxUpload   int64
	Logger      *slog.Logger
}

type httpAPI struct {
	cfg    HTTPConfig
	logger *slog.Logger
}

type processPDFRequest struct {
	Filename string `json:"filename"`
}

// NewRouter builds the gin engine serving the HTTP API.
func NewRouter(cfg HTTPConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = defaultMaxUpload
	}
	api := &httpAPI{cfg: cfg, logger: cfg.Logger}

	r := gin.New()
	r.Use(requestIDMiddleware(), loggerMiddleware(cfg.Logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/process-pdf", api.processPDF)
	r.POST("/v1/orders/upload", api.upload)
	if cfg.Extractions != nil {
		r.GET("/v1/extractions/:id", api.getExtraction)
	}
	if cfg.Exporter != nil {
		r.GET("/v1/orders/export", api.export)
	}
	return r
}

func (a *httpAPI) processPDF(c *gin.Context) {
	var req processPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.fail(c, common.NewAppError(common.CodeInvalidInput, "body must be {\"filename\": string}", common.ErrInvalidInput))
		return
	}
	path, err := ResolveStoredFile(a.cfg.StorageDir, strings.TrimSpace(req.Filename))
	if err != nil {
		a.fail(c, err)
		return
	}
	ext, err := a.cfg.Processor.ProcessFile(c.Request.Context(), path)
	a.reply(c, ext, err)
}

func (a *httpAPI) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.cfg.MaxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		a.fail(c, common.NewAppError(common.CodeInvalidInput, "multipart field \"file\" is required", common.ErrInvalidInput))
		return
	}
	v := common.NewValidator().Field("file", fh.Filename, common.Required, common.PlainFilename)
	if err := v.AsInputError(); err != nil {
		a.fail(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		a.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		a.fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	ext, err := a.cfg.Processor.ProcessBytes(c.Request.Context(), fh.Filename, content)
	a.reply(c, ext, err)
}

func (a *httpAPI) getExtraction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		a.fail(c, common.NewAppError(common.CodeInvalidInput, "id must be a UUID", common.ErrInvalidInput))
		return
	}
	ext, err := a.cfg.Extractions.Get(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": ext})
}

func (a *httpAPI) export(c *gin.Context) {
	var since time.Time
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			a.fail(c, common.NewAppError(common.CodeInvalidInput, "since must be YYYY-MM-DD", common.ErrInvalidInput))
			return
		}
		since = t
	}
	data, err := a.cfg.Exporter.ExportOrdersXLSX(c.Request.Context(), since)
	if err != nil {
		a.logger.Error("export.xlsx.failed", "err", err)
		a.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// reply answers {"success": true, "result": order} or the error envelope.
func (a *httpAPI) reply(c *gin.Context, ext *entity.Extraction, err error) {
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"extraction_id": ext.ID.String(),
		"vendor":        ext.Vendor,
		"result":        json.RawMessage(ext.Record),
	})
}

func (a *httpAPI) fail(c *gin.Context, err error) {
	code := common.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		a.logger.Error("http.request.failed", "path", c.FullPath(), "err", err)
	}
	_ = c.Error(err)
	c.JSON(code, gin.H{
		"success": false,
		"code":    common.ErrorCode(err),
		"error":   err.Error(),
	})
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := c.GetHeader(requestIDHeader); id != "" {
			ctx = common.WithRequestID(ctx, id)
		}
		ctx, id := common.EnsureRequestID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", common.RequestIDFromContext(c.Request.Context()),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
