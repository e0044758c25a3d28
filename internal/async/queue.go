package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// Job asks for one document to be processed.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// FileProcessor is the work a queue runs for each job.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*entity.Extraction, error)
}

// Outcome is reported for every finished job.
type Outcome struct {
	Job        Job
	Extraction *entity.Extraction
	Err        error
}
