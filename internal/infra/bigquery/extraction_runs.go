package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/luandatrans/backoffice/internal/logger"
)

// StartRun inserts a new row into <dataset>.extraction_runs with
// status=RUNNING and returns the generated run id. Implements
// invoice.RunRecorder.
func (r *Repository) StartRun(ctx context.Context, sourceURI string) (string, error) {
	runID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT %s (
			run_id,
			source_uri,
			started_ts,
			extractor_type,
			status
		)
		VALUES (
			@run_id,
			@source_uri,
			@started_ts,
			@extractor_type,
			@status
		)
	`, r.table(extractionRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "source_uri", Value: sourceURI},
		{Name: "started_ts", Value: time.Now()},
		{Name: "extractor_type", Value: "GEMINI_VISION"},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartRun: running insert query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartRun: job error: %w", err)
	}

	return runID, nil
}

// MarkRunFailed sets status=FAILED, finished_ts and error_message. Failures
// to record the failure are logged, not propagated, so they never mask the
// original error.
func (r *Repository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, r.table(extractionRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkRunFailed: running update query")
		return
	}
	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkRunFailed: job completed with error")
	}
}

// MarkRunSucceeded sets status=SUCCESS and finished_ts, clearing any error
// message.
func (r *Repository) MarkRunSucceeded(ctx context.Context, runID string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = ""
		WHERE run_id = @run_id
	`, r.table(extractionRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkRunSucceeded: job error: %w", err)
	}
	return nil
}
