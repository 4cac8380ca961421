// Package bigquery implements the record store on BigQuery: reference
// lookups, ledger inserts, and the extraction audit trail.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-assistant/internal/assistant"
)

// Table names within the dataset.
const (
	accountsTable       = "accounts"
	categoriesTable     = "categories"
	typesTable          = "transaction_types"
	transactionsTable   = "transactions"
	extractionRunsTable = "extraction_runs"
	modelOutputsTable   = "model_outputs"
)

// Repository holds a shared BigQuery client so each operation does not
// open its own connection.
type Repository struct {
	client  *bigquery.Client
	dataset string
	log     zerolog.Logger
}

// NewRepository creates a repository against the given project/dataset.
func NewRepository(ctx context.Context, projectID, datasetID string, log zerolog.Logger) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, dataset: datasetID, log: log}, nil
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *Repository) table(name string) *bigquery.Table {
	return r.client.Dataset(r.dataset).Table(name)
}

func (r *Repository) qualified(name string) string {
	return fmt.Sprintf("`%s.%s`", r.dataset, name)
}

// Ensure Repository satisfies the assistant's consumer interfaces.
var (
	_ assistant.Store          = (*Repository)(nil)
	_ assistant.CategorySource = (*Repository)(nil)
	_ assistant.RunRecorder    = (*Repository)(nil)
)
