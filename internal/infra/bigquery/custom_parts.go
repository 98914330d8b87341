package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/luandatrans/backoffice/internal/logger"
)

// CustomPartRow is one dynamically added part name.
type CustomPartRow struct {
	Name string `bigquery:"name"`
}

// CustomPartNames returns the dynamic custom-parts name list. A missing
// custom_parts table is not an error: installations that never added custom
// parts simply get an empty list. Implements invoice.CustomPartsSource.
func (r *Repository) CustomPartNames(ctx context.Context) ([]string, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT name
		FROM %s
		WHERE name IS NOT NULL AND name != ""
		ORDER BY name
	`, r.table(customPartsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		if isTableNotFound(err) {
			log := logger.FromContext(ctx)
			log.Debug().Msg("custom_parts table not found, using static catalog only")
			return nil, nil
		}
		return nil, fmt.Errorf("CustomPartNames: query read: %w", err)
	}

	var names []string
	for {
		var row CustomPartRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CustomPartNames: iter next: %w", err)
		}
		names = append(names, row.Name)
	}
	return names, nil
}

func isTableNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}
