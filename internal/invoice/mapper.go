package invoice

import (
	"github.com/luandatrans/backoffice/internal/domain"
)

// LineItemMapper converts extracted line items into normalized inventory
// records, resolving item names through the catalog matcher.
type LineItemMapper struct {
	matcher *CatalogMatcher
}

func NewLineItemMapper(matcher *CatalogMatcher) *LineItemMapper {
	return &LineItemMapper{matcher: matcher}
}

// Map builds the inventory record for a single line item. When no catalog
// candidate clears the threshold the raw description is kept as the item
// name, so nothing is silently renamed.
func (m *LineItemMapper) Map(date string, item domain.ExtractedLineItem) domain.InventoryMappedItem {
	mapped := domain.InventoryMappedItem{
		Date:        date,
		ItemName:    item.Description,
		Description: item.Description,
		Quantity:    item.Quantity,
		AmountUnit:  itemUnitAmount(item),
		TotalCost:   itemTotalCost(item),
	}

	if name, score, ok := m.matcher.BestMatch(item.Description); ok {
		mapped.ItemName = name
		mapped.Matched = true
		mapped.MatchScore = score
	}
	return mapped
}

// MapAll maps every item of an extraction using its invoice date.
func (m *LineItemMapper) MapAll(extraction *domain.InvoiceExtraction) []domain.InventoryMappedItem {
	items := make([]domain.InventoryMappedItem, 0, len(extraction.Items))
	for _, item := range extraction.Items {
		items = append(items, m.Map(extraction.InvoiceDate, item))
	}
	return items
}
