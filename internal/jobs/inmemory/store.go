package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/luandatrans/backoffice/internal/jobs"
)

// JobStore is an in-memory implementation of jobs.JobStore.
// Suitable for single-instance deployments and testing.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ParseInvoiceJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*jobs.ParseInvoiceJob),
	}
}

// SaveJob saves or updates a job's state.
func (s *JobStore) SaveJob(ctx context.Context, job *jobs.ParseInvoiceJob) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	if job.JobID == "" {
		return fmt.Errorf("job ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so callers cannot mutate stored state.
	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy

	return nil
}

// GetJob retrieves a job by ID.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (*jobs.ParseInvoiceJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs retrieves jobs with optional filtering.
func (s *JobStore) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ParseInvoiceJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*jobs.ParseInvoiceJob

	for _, job := range s.jobs {
		if filter.SourceURI != "" && job.SourceURI != filter.SourceURI {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}

		jobCopy := *job
		results = append(results, &jobCopy)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return []*jobs.ParseInvoiceJob{}, nil
		}
		results = results[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// UpdateJobStatus is a convenience method to update only a job's status.
func (s *JobStore) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	return nil
}

// Count returns the total number of jobs in the store.
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Clear removes all jobs from the store. Useful for testing.
func (s *JobStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make(map[string]*jobs.ParseInvoiceJob)
}

var _ jobs.JobStore = (*JobStore)(nil)
