package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

type TransactionRow struct {
	TransactionID   string     `bigquery:"transaction_id"`   // REQUIRED
	AccountID       string     `bigquery:"account_id"`       // REQUIRED
	TypeID          string     `bigquery:"type_id"`          // REQUIRED
	CategoryID      string     `bigquery:"category_id"`      // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC, stored as a magnitude
	Description     string     `bigquery:"description"`      // REQUIRED
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	CreatedTS       time.Time  `bigquery:"created_ts"`       // REQUIRED
}

// InsertTransaction persists one ledger record via streaming insert and
// returns its generated ID. The transaction date defaults to "now";
// records are immutable once written.
func (r *Repository) InsertTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	now := time.Now().UTC()
	row := &TransactionRow{
		TransactionID:   uuid.NewString(),
		AccountID:       tx.AccountID,
		TypeID:          tx.TypeID,
		CategoryID:      tx.CategoryID,
		Amount:          ratFromDecimal(tx.Amount),
		Description:     tx.Description,
		TransactionDate: civil.DateOf(now),
		CreatedTS:       now,
	}

	if err := r.table(transactionsTable).Inserter().Put(ctx, row); err != nil {
		return "", fmt.Errorf("InsertTransaction: inserting row: %w", err)
	}
	return row.TransactionID, nil
}

// transactionListRow joins the resolved type name for read paths.
type transactionListRow struct {
	TransactionID   string     `bigquery:"transaction_id"`
	AccountID       string     `bigquery:"account_id"`
	TypeID          string     `bigquery:"type_id"`
	TypeName        string     `bigquery:"type_name"`
	CategoryID      string     `bigquery:"category_id"`
	Amount          *big.Rat   `bigquery:"amount"`
	Description     string     `bigquery:"description"`
	TransactionDate civil.Date `bigquery:"transaction_date"`
	CreatedTS       time.Time  `bigquery:"created_ts"`
}

// ListTransactionsByOwner returns all transactions of the user's
// accounts with their type name resolved, ordered by date then insert
// time. This is the input for listings and the balance-history
// aggregator.
func (r *Repository) ListTransactionsByOwner(ctx context.Context, userID string) ([]domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.account_id,
			t.type_id,
			tt.name AS type_name,
			t.category_id,
			t.amount,
			t.description,
			t.transaction_date,
			t.created_ts
		FROM %s t
		JOIN %s a ON t.account_id = a.account_id
		JOIN %s tt ON t.type_id = tt.type_id
		WHERE a.owner_id = @owner
		ORDER BY t.transaction_date, t.created_ts
	`, r.qualified(transactionsTable), r.qualified(accountsTable), r.qualified(typesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "owner", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByOwner: query read: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row transactionListRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByOwner: iter next: %w", err)
		}
		txs = append(txs, domain.Transaction{
			ID:          row.TransactionID,
			AccountID:   row.AccountID,
			TypeID:      row.TypeID,
			TypeName:    row.TypeName,
			CategoryID:  row.CategoryID,
			Amount:      decimalFromRat(row.Amount),
			Description: row.Description,
			Date:        row.TransactionDate.In(time.UTC),
		})
	}
	return txs, nil
}
