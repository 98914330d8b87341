package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luandatrans/backoffice/internal/api/middleware"
	"github.com/luandatrans/backoffice/internal/domain"
	"github.com/luandatrans/backoffice/internal/jobs"
	"github.com/luandatrans/backoffice/internal/reconcile"
)

// maxStatementUpload caps a single multipart statement upload at 10 MiB.
const maxStatementUpload = 10 << 20

// Verifier runs a bank reconciliation request.
type Verifier interface {
	Verify(ctx context.Context, in reconcile.VerifyInput) (*domain.ReconciliationResult, error)
}

// VerificationRecorder persists the audit trail of completed verifications.
type VerificationRecorder interface {
	InsertVerificationRun(ctx context.Context, bank domain.BankAccount, start, end time.Time, result *domain.ReconciliationResult) (string, error)
}

// ReconciliationHandler handles bank reconciliation endpoints.
type ReconciliationHandler struct {
	verifier Verifier
	recorder VerificationRecorder
	log      zerolog.Logger
}

// NewReconciliationHandler creates a new reconciliation handler. The recorder
// may be nil, in which case verdicts are returned but not persisted.
func NewReconciliationHandler(verifier Verifier, recorder VerificationRecorder, log zerolog.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		verifier: verifier,
		recorder: recorder,
		log:      log,
	}
}

// Verify handles POST /api/reconciliation/verify
//
// Expects multipart form data: bank, start_date, end_date (YYYY-MM-DD) text
// fields plus account002 and account001 statement file uploads.
func (h *ReconciliationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxStatementUpload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	bank, err := domain.ParseBankAccount(r.FormValue("bank"))
	if err != nil {
		middleware.WriteErrorDetails(w, http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "Invalid bank",
			Details: err.Error(),
			Troubleshooting: []string{
				"Use one of the supported bank names: \"Caixa Angola\" or \"BAI\"",
			},
		})
		return
	}

	start, err := time.Parse("2006-01-02", r.FormValue("start_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.FormValue("end_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		middleware.WriteError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	account002, err := readFormFile(r, "account002")
	if err != nil {
		middleware.WriteErrorDetails(w, http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "Missing account002 statement",
			Details: err.Error(),
			Troubleshooting: []string{
				"Attach the Account 002 (cash deposits) statement export as form field 'account002'",
			},
		})
		return
	}
	account001, err := readFormFile(r, "account001")
	if err != nil {
		middleware.WriteErrorDetails(w, http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "Missing account001 statement",
			Details: err.Error(),
			Troubleshooting: []string{
				"Attach the Account 001 (TPA settlements) statement export as form field 'account001'",
			},
		})
		return
	}

	result, err := h.verifier.Verify(ctx, reconcile.VerifyInput{
		Bank:          bank,
		Start:         start,
		End:           end,
		Account002CSV: account002,
		Account001CSV: account001,
	})
	if err != nil {
		h.writeVerifyError(w, err)
		return
	}

	if h.recorder != nil {
		verificationID, recErr := h.recorder.InsertVerificationRun(ctx, bank, start, end, result)
		if recErr != nil {
			// The verdict is still valid; only the audit write failed.
			h.log.Error().Err(recErr).Msg("Failed to persist verification run")
		} else {
			h.log.Info().Str("verification_id", verificationID).Msg("Verification run recorded")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// writeVerifyError maps pipeline failures to actionable HTTP responses.
func (h *ReconciliationHandler) writeVerifyError(w http.ResponseWriter, err error) {
	var emptyErr *reconcile.EmptyStatementError
	if errors.As(err, &emptyErr) {
		middleware.WriteErrorDetails(w, http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "Empty bank statement",
			Details: err.Error(),
			Troubleshooting: []string{
				fmt.Sprintf("Verify the Account %s export is not empty", emptyErr.Account),
				"Re-export the statement from the bank portal and retry",
			},
		})
		return
	}

	var noMatchErr *reconcile.NoQualifyingTransactionsError
	if errors.As(err, &noMatchErr) {
		hint := "Verify the statement covers the requested date range"
		switch noMatchErr.Account {
		case reconcile.AccountCashLabel:
			hint = "Verify the Account 002 statement contains 'Depósito' cash deposit lines"
		case reconcile.AccountTPALabel:
			hint = "Verify the Account 001 statement contains 'Fecho TPA' settlement lines"
		}
		middleware.WriteErrorDetails(w, http.StatusUnprocessableEntity, middleware.ErrorResponse{
			Error:   "No qualifying transactions",
			Details: err.Error(),
			Troubleshooting: []string{
				hint,
				"Check that the export is the detailed movement listing, not a summary",
			},
		})
		return
	}

	h.log.Error().Err(err).Msg("Verification failed")
	middleware.WriteError(w, http.StatusInternalServerError, "Verification failed")
}

func readFormFile(r *http.Request, field string) (string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("form file %q: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxStatementUpload))
	if err != nil {
		return "", fmt.Errorf("reading form file %q: %w", field, err)
	}
	return string(data), nil
}

// Uploader stores invoice blobs and returns their URI.
type Uploader interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, body io.Reader) (string, error)
}

// InvoicesHandler handles invoice ingestion endpoints.
type InvoicesHandler struct {
	uploader  Uploader
	publisher jobs.Publisher
	bucket    string
	log       zerolog.Logger
}

// NewInvoicesHandler creates a new invoices handler.
func NewInvoicesHandler(uploader Uploader, publisher jobs.Publisher, bucket string, log zerolog.Logger) *InvoicesHandler {
	return &InvoicesHandler{
		uploader:  uploader,
		publisher: publisher,
		bucket:    bucket,
		log:       log,
	}
}

// Parse handles POST /api/invoices/parse
//
// Accepts either a multipart upload (form file "invoice") or a JSON body
// referencing an already-uploaded blob: {"source_uri": "gs://...", "mime_type": "..."}.
func (h *InvoicesHandler) Parse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sourceURI, mimeType string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		uri, mime, err := h.uploadInvoice(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("Invoice upload failed")
			middleware.WriteErrorDetails(w, http.StatusBadRequest, middleware.ErrorResponse{
				Error:   "Invoice upload failed",
				Details: err.Error(),
				Troubleshooting: []string{
					"Attach the invoice image or PDF as form field 'invoice'",
				},
			})
			return
		}
		sourceURI, mimeType = uri, mime
	} else {
		var req struct {
			SourceURI string `json:"source_uri"`
			MIMEType  string `json:"mime_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.SourceURI == "" {
			middleware.WriteError(w, http.StatusBadRequest, "source_uri is required")
			return
		}
		sourceURI, mimeType = req.SourceURI, req.MIMEType
	}

	if mimeType == "" {
		mimeType = "application/pdf"
	}

	job := &jobs.ParseInvoiceJob{
		JobID:     uuid.NewString(),
		SourceURI: sourceURI,
		MIMEType:  mimeType,
	}

	if err := h.publisher.PublishParseInvoice(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue invoice job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue invoice job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("source_uri", sourceURI).Msg("Invoice job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.JobID,
		"source_uri": sourceURI,
		"status":     string(job.Status),
	})
}

func (h *InvoicesHandler) uploadInvoice(ctx context.Context, r *http.Request) (string, string, error) {
	if err := r.ParseMultipartForm(maxStatementUpload); err != nil {
		return "", "", fmt.Errorf("parsing multipart form: %w", err)
	}

	file, header, err := r.FormFile("invoice")
	if err != nil {
		return "", "", fmt.Errorf("form file \"invoice\": %w", err)
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	objectName := fmt.Sprintf("invoices/%s/%s-%s",
		time.Now().Format("2006/01/02"), uuid.NewString(), header.Filename)

	uri, err := h.uploader.Upload(ctx, h.bucket, objectName, mimeType, file)
	if err != nil {
		return "", "", fmt.Errorf("uploading invoice: %w", err)
	}
	return uri, mimeType, nil
}

// JobsHandler handles job-status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		SourceURI: query.Get("source_uri"),
		Status:    jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
