package bigquery

import (
	"context"
	"fmt"
	"time"

	"github.com/luandatrans/backoffice/internal/domain"
)

// InventoryItemRow is one mapped invoice line item as stored in
// <dataset>.inventory_items.
type InventoryItemRow struct {
	RunID       string    `bigquery:"run_id"`
	Date        string    `bigquery:"date"`
	ItemName    string    `bigquery:"item_name"`
	Description string    `bigquery:"description"`
	Quantity    float64   `bigquery:"quantity"`
	AmountUnit  float64   `bigquery:"amount_unit"`
	TotalCost   float64   `bigquery:"total_cost"`
	Matched     bool      `bigquery:"matched"`
	MatchScore  float64   `bigquery:"match_score"`
	InsertedTS  time.Time `bigquery:"inserted_ts"`
}

// InsertInventoryItems writes the mapped items of one extraction run.
// Implements invoice.ItemSink.
func (r *Repository) InsertInventoryItems(ctx context.Context, runID string, items []domain.InventoryMappedItem) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*InventoryItemRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &InventoryItemRow{
			RunID:       runID,
			Date:        item.Date,
			ItemName:    item.ItemName,
			Description: item.Description,
			Quantity:    item.Quantity,
			AmountUnit:  item.AmountUnit,
			TotalCost:   item.TotalCost,
			Matched:     item.Matched,
			MatchScore:  item.MatchScore,
			InsertedTS:  now,
		})
	}

	inserter := r.client.Dataset(r.dataset).Table(inventoryItemsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertInventoryItems: inserting %d rows: %w", len(rows), err)
	}
	return nil
}
