package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// Table names inside the configured dataset.
const (
	dailyReportsTable   = "daily_reports"
	verificationsTable  = "verification_runs"
	extractionRunsTable = "extraction_runs"
	customPartsTable    = "custom_parts"
	inventoryItemsTable = "inventory_items"
)

// Repository is the BigQuery-backed persistence layer: operational day
// reports for the aggregator, audit rows for verification and extraction
// runs, the dynamic custom-parts list and mapped inventory items.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository creates a repository for the given project and dataset.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

// NewRepositoryWithClient wraps an existing client, mainly for tests.
func NewRepositoryWithClient(client *bigquery.Client, dataset string) *Repository {
	return &Repository{client: client, dataset: dataset}
}

func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) table(name string) string {
	return fmt.Sprintf("%s.%s", r.dataset, name)
}
