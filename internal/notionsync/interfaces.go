package notionsync

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// NotionService defines the interface for interacting with Notion API.
// This interface enables mocking and testing of Notion operations.
type NotionService interface {
	// CreatePage creates a new page in a Notion database with the given properties.
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryDatabase queries a Notion database with the given filter.
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// TransactionSource provides the transactions eligible for export.
type TransactionSource interface {
	ListTransactionsByOwner(ctx context.Context, userID string) ([]domain.Transaction, error)
}
