package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

type TransactionTypeRow struct {
	TypeID string `bigquery:"type_id"` // REQUIRED
	Name   string `bigquery:"name"`    // REQUIRED, canonically "debit" or "credit"
}

// FindTransactionTypeByName matches exactly; BigQuery string equality is
// case-sensitive, which is the contract for the fixed type set. Returns
// (nil, nil) when nothing matches.
func (r *Repository) FindTransactionTypeByName(ctx context.Context, name string) (*domain.TransactionType, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			type_id,
			name
		FROM %s
		WHERE name = @name
		LIMIT 1
	`, r.qualified(typesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "name", Value: name},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindTransactionTypeByName: query read: %w", err)
	}

	var row TransactionTypeRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindTransactionTypeByName: iter next: %w", err)
	}
	return &domain.TransactionType{ID: row.TypeID, Name: row.Name}, nil
}
