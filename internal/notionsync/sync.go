package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"
)

// Syncer exports committed transactions to a Notion database. Exports
// are idempotent: the Transaction ID property on existing pages is used
// to skip records that were already pushed.
type Syncer struct {
	source TransactionSource
	notion NotionService
	dbID   string
	log    zerolog.Logger
}

// NewSyncer creates a syncer against the given Notion database.
func NewSyncer(source TransactionSource, notion NotionService, databaseID string, log zerolog.Logger) *Syncer {
	return &Syncer{
		source: source,
		notion: notion,
		dbID:   databaseID,
		log:    log,
	}
}

// ExportTransactions pushes the given transactions of one user to
// Notion. An empty transactionIDs set exports everything the user has.
// Individual page failures are logged and skipped so one bad record
// does not block the rest; the first error is returned after the full
// pass for retry accounting.
func (s *Syncer) ExportTransactions(ctx context.Context, userID string, transactionIDs []string) error {
	txs, err := s.source.ListTransactionsByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("ExportTransactions: listing transactions: %w", err)
	}

	if len(transactionIDs) > 0 {
		wanted := make(map[string]bool, len(transactionIDs))
		for _, id := range transactionIDs {
			wanted[id] = true
		}
		filtered := txs[:0]
		for _, tx := range txs {
			if wanted[tx.ID] {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	existing, err := s.existingTransactionIDs(ctx)
	if err != nil {
		return fmt.Errorf("ExportTransactions: querying existing pages: %w", err)
	}

	var created, skipped int
	var firstErr error
	for i := range txs {
		tx := &txs[i]
		if existing[tx.ID] {
			skipped++
			continue
		}

		page, err := s.notion.CreatePage(ctx, s.dbID, TransactionToNotionProperties(tx))
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("transaction_id", tx.ID).
				Msg("Failed to create Notion page")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		s.log.Info().
			Str("transaction_id", tx.ID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	s.log.Info().
		Str("user_id", userID).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(txs)).
		Msg("Transaction export completed")

	if firstErr != nil {
		return fmt.Errorf("ExportTransactions: %w", firstErr)
	}
	return nil
}

// existingTransactionIDs walks the whole database and collects the
// Transaction ID property of every page. Pagination is handled here.
func (s *Syncer) existingTransactionIDs(ctx context.Context) (map[string]bool, error) {
	ids := make(map[string]bool)
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.notion.QueryDatabase(ctx, s.dbID, req)
		if err != nil {
			return nil, fmt.Errorf("existingTransactionIDs: %w", err)
		}

		for _, page := range resp.Results {
			if id := extractTransactionID(page); id != "" {
				ids[id] = true
			}
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return ids, nil
}

// extractTransactionID extracts the transaction ID from a Notion page's properties.
// Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties["Transaction ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
