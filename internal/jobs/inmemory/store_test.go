package inmemory

import (
	"context"
	"testing"

	"github.com/luandatrans/backoffice/internal/jobs"
)

func TestJobStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	job := &jobs.ParseInvoiceJob{
		JobID:     "job-1",
		SourceURI: "gs://bucket/invoices/a.pdf",
		Status:    jobs.JobStatusPending,
	}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	// Mutating the original must not affect the stored copy.
	job.Status = jobs.JobStatusFailed

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("status = %q, store must hold its own copy", got.Status)
	}
}

func TestJobStoreGetMissing(t *testing.T) {
	store := NewJobStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error for a missing job")
	}
}

func TestJobStoreSaveValidation(t *testing.T) {
	store := NewJobStore()
	if err := store.SaveJob(context.Background(), nil); err == nil {
		t.Error("nil job must be rejected")
	}
	if err := store.SaveJob(context.Background(), &jobs.ParseInvoiceJob{}); err == nil {
		t.Error("empty job ID must be rejected")
	}
}

func TestJobStoreListFiltering(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()

	seed := []*jobs.ParseInvoiceJob{
		{JobID: "a", SourceURI: "gs://b/1.pdf", Status: jobs.JobStatusPending},
		{JobID: "b", SourceURI: "gs://b/1.pdf", Status: jobs.JobStatusCompleted},
		{JobID: "c", SourceURI: "gs://b/2.pdf", Status: jobs.JobStatusCompleted},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s): %v", j.JobID, err)
		}
	}

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("completed jobs = %d, want 2", len(byStatus))
	}

	byURI, err := store.ListJobs(ctx, jobs.JobFilter{SourceURI: "gs://b/1.pdf"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byURI) != 2 {
		t.Errorf("jobs for uri = %d, want 2", len(byURI))
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited jobs = %d, want 1", len(limited))
	}

	past, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("offset past end = %d jobs, want 0", len(past))
	}
}
