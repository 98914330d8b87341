package domain

// ExtractedLineItem is one line item as reported by the vision model, after
// defensive coercion of the untrusted numeric fields. The model already
// applies proportional discount distribution and IVA, so the amounts here
// are final per-line figures.
type ExtractedLineItem struct {
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Total        float64 `json:"total"`
	IVARate      float64 `json:"iva_rate"`
	IVAAmount    float64 `json:"iva_amount"`
	TotalExclTax float64 `json:"total_excl_tax"`
	TotalInclTax float64 `json:"total_incl_tax"`
}

// InvoiceExtraction is the full parsed model response for one invoice.
type InvoiceExtraction struct {
	InvoiceDate string              `json:"invoice_date"`
	Items       []ExtractedLineItem `json:"items"`
}

// InventoryMappedItem is the normalized inventory record built from an
// extracted line item. ItemName is the matched catalog name, or the raw
// description when no catalog candidate cleared the match threshold.
type InventoryMappedItem struct {
	Date        string  `json:"date"`
	ItemName    string  `json:"item_name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	AmountUnit  float64 `json:"amount_unit"`
	TotalCost   float64 `json:"total_cost"`
	// Matched reports whether ItemName came from the catalog.
	Matched bool `json:"matched"`
	// MatchScore is the similarity score of the selected candidate, zero
	// when unmatched.
	MatchScore float64 `json:"match_score"`
}
