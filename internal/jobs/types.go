package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/pipeline"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the draft is ready.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed for good.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies when a job is published without MaxRetries.
const DefaultMaxRetries = 3

// ExtractionJob imports one receipt in the background. The UI polls it until
// Draft is set or Status is failed.
type ExtractionJob struct {
	JobID       string             `json:"jobId"`
	HouseholdID string             `json:"householdId,omitempty"`
	Channel     extraction.Channel `json:"channel"`

	// Exactly one source is set.
	GCSURI   string              `json:"gcsUri,omitempty"`
	Document extraction.Document `json:"-"`

	Status      JobStatus       `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Error       string          `json:"error,omitempty"`
	RetryCount  int             `json:"retryCount"`
	MaxRetries  int             `json:"maxRetries"`
	Draft       *pipeline.Draft `json:"draft,omitempty"`
}

// Request converts the job into a pipeline import request.
func (j *ExtractionJob) Request() pipeline.ImportRequest {
	return pipeline.ImportRequest{
		HouseholdID: j.HouseholdID,
		Channel:     j.Channel,
		GCSURI:      j.GCSURI,
		Document:    j.Document,
	}
}

// Publisher enqueues jobs.
type Publisher interface {
	Publish(ctx context.Context, job *ExtractionJob) error
	Close() error
}

// Consumer runs a handler over queued jobs.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error is retried unless it is
// wrapped with Permanent.
type JobHandler func(ctx context.Context, job *ExtractionJob) error

// JobStore stores job state so it can be polled.
type JobStore interface {
	SaveJob(ctx context.Context, job *ExtractionJob) error
	GetJob(ctx context.Context, jobID string) (*ExtractionJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractionJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// ErrJobNotFound is returned by JobStore.GetJob for unknown ids.
var ErrJobNotFound = errors.New("job not found")

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	HouseholdID string
	Status      JobStatus
	Limit       int
	Offset      int
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
