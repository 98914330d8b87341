package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/luandatrans/backoffice/internal/api/handlers"
	"github.com/luandatrans/backoffice/internal/api/middleware"
	"github.com/luandatrans/backoffice/internal/config"
	"github.com/luandatrans/backoffice/internal/gcs"
	infraBQ "github.com/luandatrans/backoffice/internal/infra/bigquery"
	"github.com/luandatrans/backoffice/internal/invoice"
	"github.com/luandatrans/backoffice/internal/jobs"
	"github.com/luandatrans/backoffice/internal/jobs/inmemory"
	"github.com/luandatrans/backoffice/internal/logger"
	"github.com/luandatrans/backoffice/internal/ocr"
	"github.com/luandatrans/backoffice/internal/reconcile"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - invoice uploads will be disabled")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	blobs := gcs.NewStore()
	extractor := ocr.NewClient(cfg.OCRModel)
	ingestion := invoice.NewIngestion(repo, blobs, extractor, repo, repo, log)

	aggregator := reconcile.NewRevenueAggregator(cfg.AgasekePlates)
	verifier := reconcile.NewService(repo, aggregator, cfg.Tolerance, log)

	// Job infrastructure
	jobStore := inmemory.NewJobStore()
	jobQueue := inmemory.NewQueue(jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		parseJob, ok := job.(*jobs.ParseInvoiceJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		items, err := ingestion.IngestInvoice(ctx, parseJob.SourceURI, parseJob.MIMEType)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", parseJob.JobID).
				Str("source_uri", parseJob.SourceURI).
				Msg("Invoice ingestion failed")
			return err
		}

		log.Info().
			Str("job_id", parseJob.JobID).
			Str("source_uri", parseJob.SourceURI).
			Int("items", len(items)).
			Msg("Invoice ingestion completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	reconciliationHandler := handlers.NewReconciliationHandler(verifier, repo, log)
	invoicesHandler := handlers.NewInvoicesHandler(blobs, jobQueue, cfg.GCSBucket, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/reconciliation/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reconciliationHandler.Verify(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/invoices/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			invoicesHandler.Parse(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(log)(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
