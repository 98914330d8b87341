package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeParseInvoice represents an invoice OCR ingestion job.
	JobTypeParseInvoice JobType = "parse_invoice"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ParseInvoiceJob represents a job to run the OCR ingestion pipeline over an
// invoice stored in GCS.
type ParseInvoiceJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// SourceURI is the GCS URI of the invoice to process.
	SourceURI string `json:"source_uri"`

	// MIMEType is the content type of the invoice file.
	MIMEType string `json:"mime_type"`

	// RunID is the id of the extraction run once the pipeline started.
	RunID string `json:"run_id,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ParseInvoiceJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ParseInvoiceJob) GetType() JobType {
	return JobTypeParseInvoice
}

// GetStatus implements the Job interface.
func (j *ParseInvoiceJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishParseInvoice publishes an invoice ingestion job.
	PublishParseInvoice(ctx context.Context, job *ParseInvoiceJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ParseInvoiceJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ParseInvoiceJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseInvoiceJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// SourceURI filters jobs by invoice source URI.
	SourceURI string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
