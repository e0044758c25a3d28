package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// ProcessorQueue runs jobs on a fixed set of workers. Each document is
// processed independently; nothing is shared between jobs.
type ProcessorQueue struct {
	proc     FileProcessor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult func(Outcome)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHandler registers fn to receive every outcome. fn is called
// from worker goroutines and must be safe for concurrent use.
func WithResultHandler(fn func(Outcome)) Option {
	return func(q *ProcessorQueue) {
		q.onResult = fn
	}
}

// FromConfig maps queue configuration onto options.
func FromConfig(cfg common.QueueConfig) []Option {
	return []Option{
		WithWorkers(cfg.Workers),
		WithQueueSize(cfg.Size),
		WithProcessTimeout(cfg.ProcessTimeout),
	}
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}
	ext, err := q.proc.ProcessFile(ctx, job.Path)
	cancel()

	switch {
	case err == nil:
		q.logger.Info("processed file successfully", "worker_id", workerID, "path", job.Path, "vendor", ext.Vendor)
	case common.IsDocumentError(err):
		q.logger.Warn("document rejected", "worker_id", workerID, "path", job.Path, "code", common.ErrorCode(err))
	default:
		q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "error", err)
	}
	if q.onResult != nil {
		q.onResult(Outcome{Job: job, Extraction: ext, Err: err})
	}
}

// Enqueue hands job to the workers, blocking while the buffer is full
// until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	select {
	case q.ch <- job:
		q.logger.Debug("queued file for processing", "path", job.Path)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or
// for ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
