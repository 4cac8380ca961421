package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

type AccountRow struct {
	AccountID   string                 `bigquery:"account_id"` // REQUIRED
	OwnerID     string                 `bigquery:"owner_id"`   // REQUIRED
	Name        string                 `bigquery:"name"`       // NULLABLE (empty string → "")
	AccountType string                 `bigquery:"account_type"`
	Balance     *big.Rat               `bigquery:"balance"`    // NUMERIC, never written by this module
	CreatedTS   time.Time              `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
	UpdatedTS   bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

// ListAccountsByOwner returns the user's accounts in creation order.
// The committer's "first account" fallback is defined against this
// order, so it must stay deterministic.
func (r *Repository) ListAccountsByOwner(ctx context.Context, userID string) ([]domain.Account, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			account_id,
			owner_id,
			name,
			account_type,
			balance,
			created_ts,
			updated_ts
		FROM %s
		WHERE owner_id = @owner
		ORDER BY created_ts, account_id
	`, r.qualified(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "owner", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsByOwner: query read: %w", err)
	}

	var accounts []domain.Account
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsByOwner: iter next: %w", err)
		}
		accounts = append(accounts, domain.Account{
			ID:      row.AccountID,
			OwnerID: row.OwnerID,
			Name:    row.Name,
			Type:    row.AccountType,
			Balance: decimalFromRat(row.Balance),
		})
	}
	return accounts, nil
}
