package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/freight-orders/internal/app"
	"github.com/joseph-ayodele/freight-orders/internal/async"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/ingest"
	"github.com/joseph-ayodele/freight-orders/internal/server"
)

func main() {
	_ = common.LoadDotEnv()
	cfg := common.LoadConfig()

	watch := flag.String("watch", "", "comma separated inbox directories to watch for new documents")
	flag.Parse()

	logger := app.NewLogger(cfg.Log)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.DB.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	queue := async.NewProcessorQueue(a.Processor, logger, async.FromConfig(cfg.Queue)...)

	if roots := splitList(*watch); len(roots) > 0 {
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       roots,
			InitialScan: true,
			Debounce:    500 * time.Millisecond,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("failed to start watcher", "roots", roots, "error", err)
			os.Exit(1)
		}
		go func() {
			for path := range events {
				if err := queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()}); err != nil {
					logger.Warn("failed to enqueue watched file", "path", path, "error", err)
				}
			}
		}()
		go func() {
			for err := range errs {
				logger.Warn("watcher reported error", "error", err)
			}
		}()
		logger.Info("watching inbox directories", "roots", roots)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	orders := server.NewOrderService(a.Processor, cfg.Server.StorageDir, logger)
	grpcServer, healthServer := server.NewGRPCServer(orders, logger)

	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: server.NewRouter(server.HTTPConfig{
			Processor:   a.Processor,
			Extractions: a.Extractions,
			Exporter:    a.Exporter,
			StorageDir:  cfg.Server.StorageDir,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("gRPC listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()
	go func() {
		logger.Info("HTTP listening", "addr", cfg.Server.HTTPAddr, "storage_dir", cfg.Server.StorageDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
