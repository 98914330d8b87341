package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/luandatrans/backoffice/internal/domain"
)

// ModelOutputError reports that the vision model's response could not be
// parsed as the expected JSON contract. The raw text is carried for
// diagnosis; the adapter never guesses at a partial payload.
type ModelOutputError struct {
	Raw string
	Err error
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("model output unparsable: %v", e.Err)
}

func (e *ModelOutputError) Unwrap() error {
	return e.Err
}

// ParseExtraction parses the raw model response into an InvoiceExtraction,
// defensively coercing every numeric field. The model already computes
// tax-inclusive line totals and proportional discount distribution; this
// adapter only guards against malformed values in an untrusted payload.
func ParseExtraction(raw string) (*domain.InvoiceExtraction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ModelOutputError{Raw: raw, Err: errors.New("empty response")}
	}

	clean := cleanModelJSON(raw)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, &ModelOutputError{Raw: raw, Err: err}
	}

	itemsAny, ok := payload["items"]
	if !ok {
		return nil, &ModelOutputError{Raw: raw, Err: errors.New("missing 'items' key")}
	}
	itemsSlice, ok := itemsAny.([]interface{})
	if !ok {
		return nil, &ModelOutputError{Raw: raw, Err: fmt.Errorf("'items' is %T, want array", itemsAny)}
	}

	extraction := &domain.InvoiceExtraction{
		InvoiceDate: coerceString(payload, "invoice_date"),
		Items:       make([]domain.ExtractedLineItem, 0, len(itemsSlice)),
	}

	for i, itemAny := range itemsSlice {
		obj, ok := itemAny.(map[string]interface{})
		if !ok {
			return nil, &ModelOutputError{Raw: raw, Err: fmt.Errorf("item %d is %T, want object", i, itemAny)}
		}
		extraction.Items = append(extraction.Items, coerceLineItem(obj))
	}

	return extraction, nil
}

// coerceLineItem applies the defensive defaults: quantity falls back to 1,
// every money field to 0. NaN and infinities never propagate.
func coerceLineItem(obj map[string]interface{}) domain.ExtractedLineItem {
	return domain.ExtractedLineItem{
		Description:  coerceString(obj, "description"),
		Quantity:     coercePositive(obj, "quantity", 1),
		UnitPrice:    coercePositive(obj, "unit_price", 0),
		Total:        coercePositive(obj, "total", 0),
		IVARate:      coercePositive(obj, "iva_rate", 0),
		IVAAmount:    coercePositive(obj, "iva_amount", 0),
		TotalExclTax: coercePositive(obj, "total_excl_tax", 0),
		TotalInclTax: coercePositive(obj, "total_incl_tax", 0),
	}
}

// itemTotalCost prefers the tax-inclusive total, then the plain total.
func itemTotalCost(item domain.ExtractedLineItem) float64 {
	if item.TotalInclTax > 0 {
		return item.TotalInclTax
	}
	if item.Total > 0 {
		return item.Total
	}
	return 0
}

// itemUnitAmount derives the per-unit cost from the total when possible and
// falls back to the raw unit price otherwise.
func itemUnitAmount(item domain.ExtractedLineItem) float64 {
	totalCost := itemTotalCost(item)
	if totalCost > 0 && item.Quantity > 0 {
		return totalCost / item.Quantity
	}
	return item.UnitPrice
}

func coerceString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// coercePositive returns the field as a float64 when it is a finite positive
// number, else the fallback.
func coercePositive(m map[string]interface{}, key string, fallback float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	f, ok := v.(float64)
	if !ok {
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return fallback
	}
	return f
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON object if extra text survived.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
