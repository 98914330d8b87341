package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/luandatrans/backoffice/internal/jobs"
	"github.com/luandatrans/backoffice/internal/logger"
)

const (
	defaultQueueSize  = 100
	defaultWorkers    = 5
	defaultMaxRetries = 3
)

// Queue is an in-memory job queue backed by a buffered channel.
// Jobs are lost on process restart; acceptable for a single-instance
// back office where invoices can simply be re-submitted.
type Queue struct {
	jobChan   chan *jobs.ParseInvoiceJob
	store     jobs.JobStore
	log       zerolog.Logger
	workers   int
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeChan chan struct{}
}

// NewQueue creates a new in-memory job queue.
func NewQueue(store jobs.JobStore) *Queue {
	return &Queue{
		jobChan:   make(chan *jobs.ParseInvoiceJob, defaultQueueSize),
		store:     store,
		log:       logger.New(),
		workers:   defaultWorkers,
		closeChan: make(chan struct{}),
	}
}

// PublishParseInvoice publishes an invoice ingestion job to the queue.
func (q *Queue) PublishParseInvoice(ctx context.Context, job *jobs.ParseInvoiceJob) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	if job.JobID == "" {
		return fmt.Errorf("job ID cannot be empty")
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		q.log.Debug().
			Str("job_id", job.JobID).
			Str("source_uri", job.SourceURI).
			Msg("Job published to queue")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	default:
		return fmt.Errorf("queue is full (capacity: %d)", defaultQueueSize)
	}
}

// Close closes the publisher side of the queue. The job channel itself is
// never closed: pending retry timers may still attempt a send, and they bail
// out on closeChan instead.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.closeChan)
	}
	return nil
}

// Start begins consuming jobs from the queue with the configured worker pool.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	q.log.Info().Int("workers", q.workers).Msg("Starting job queue workers")

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i, handler)
	}

	return nil
}

// Stop waits for in-flight jobs to complete or the context to expire.
func (q *Queue) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.log.Info().Msg("Job queue workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for workers to stop: %w", ctx.Err())
	}
}

func (q *Queue) worker(ctx context.Context, id int, handler jobs.JobHandler) {
	defer q.wg.Done()

	log := q.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, log, job, handler)
		case <-q.closeChan:
			log.Debug().Msg("Queue closed, worker exiting")
			return
		case <-ctx.Done():
			log.Debug().Msg("Context cancelled, worker exiting")
			return
		}
	}
}

func (q *Queue) processJob(ctx context.Context, log zerolog.Logger, job *jobs.ParseInvoiceJob, handler jobs.JobHandler) {
	now := time.Now().UTC()
	job.Status = jobs.JobStatusRunning
	job.StartedAt = &now

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to mark job running")
		}
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("source_uri", job.SourceURI).
		Msg("Processing job")

	err := handler(ctx, job)

	completedAt := time.Now().UTC()
	job.CompletedAt = &completedAt

	if err != nil {
		log.Error().Err(err).Str("job_id", job.JobID).Msg("Job failed")
		job.Error = err.Error()

		if job.RetryCount < job.MaxRetries {
			job.RetryCount++
			job.Status = jobs.JobStatusRetrying
			job.CompletedAt = nil

			if q.store != nil {
				if saveErr := q.store.SaveJob(ctx, job); saveErr != nil {
					log.Error().Err(saveErr).Str("job_id", job.JobID).Msg("Failed to save retry state")
				}
			}

			// Exponential backoff before requeueing.
			backoff := time.Duration(job.RetryCount*job.RetryCount) * time.Second
			log.Info().
				Str("job_id", job.JobID).
				Int("retry", job.RetryCount).
				Dur("backoff", backoff).
				Msg("Retrying job")

			time.AfterFunc(backoff, func() {
				select {
				case q.jobChan <- job:
				case <-q.closeChan:
					log.Warn().Str("job_id", job.JobID).Msg("Queue closed, dropping retry")
				}
			})
			return
		}

		job.Status = jobs.JobStatusFailed
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Str("job_id", job.JobID).Msg("Job completed")
	}

	if q.store != nil {
		if saveErr := q.store.SaveJob(ctx, job); saveErr != nil {
			log.Error().Err(saveErr).Str("job_id", job.JobID).Msg("Failed to save final job state")
		}
	}
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
