package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/luandatrans/backoffice/internal/jobs"
)

func TestQueuePublishAndProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewJobStore()
	queue := NewQueue(store)

	handled := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		handled <- job.GetID()
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ParseInvoiceJob{JobID: "job-1", SourceURI: "gs://bucket/a.pdf"}
	if err := queue.PublishParseInvoice(ctx, job); err != nil {
		t.Fatalf("PublishParseInvoice: %v", err)
	}

	select {
	case id := <-handled:
		if id != "job-1" {
			t.Errorf("handled job %q, want job-1", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was never handled")
	}

	waitForStatus(t, store, "job-1", jobs.JobStatusCompleted)
}

func TestQueuePublishAfterClose(t *testing.T) {
	queue := NewQueue(NewJobStore())
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close again must be a no-op.
	if err := queue.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	job := &jobs.ParseInvoiceJob{JobID: "job-1", SourceURI: "gs://bucket/a.pdf"}
	err := queue.PublishParseInvoice(context.Background(), job)
	if err == nil {
		t.Fatal("expected an error when publishing to a closed queue")
	}

	if err := queue.Start(context.Background(), func(context.Context, jobs.Job) error { return nil }); err == nil {
		t.Fatal("expected an error when starting a closed queue")
	}
}

// A retry backoff timer can outlive the queue. Its requeue attempt must be
// dropped quietly rather than crash the process.
func TestQueueRetryTimerAfterClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	store := NewJobStore()
	queue := NewQueue(store)

	attempted := make(chan struct{}, 4)
	handler := func(ctx context.Context, job jobs.Job) error {
		attempted <- struct{}{}
		return fmt.Errorf("extraction backend unavailable")
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.ParseInvoiceJob{JobID: "job-1", SourceURI: "gs://bucket/a.pdf", MaxRetries: 1}
	if err := queue.PublishParseInvoice(ctx, job); err != nil {
		t.Fatalf("PublishParseInvoice: %v", err)
	}

	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never attempted")
	}
	waitForStatus(t, store, "job-1", jobs.JobStatusRetrying)

	// Shut down while the one-second backoff timer is still pending.
	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Let the timer fire against the closed queue.
	time.Sleep(1500 * time.Millisecond)

	got, err := store.GetJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.JobStatusRetrying {
		t.Errorf("status = %q, want %q after the retry was dropped", got.Status, jobs.JobStatusRetrying)
	}
}

func waitForStatus(t *testing.T, store *JobStore, jobID string, want jobs.JobStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := store.GetJob(context.Background(), jobID)
		if err == nil && got.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q", jobID, want)
}
