package notionsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

type fakeSource struct {
	txs []domain.Transaction
	err error
}

func (f *fakeSource) ListTransactionsByOwner(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return f.txs, f.err
}

type fakeNotion struct {
	existing  []notionapi.Page
	created   []notionapi.Properties
	createErr error
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, props notionapi.Properties) (*notionapi.Page, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, props)
	return &notionapi.Page{ID: notionapi.ObjectID("page-1")}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.existing, HasMore: false}, nil
}

func sampleTx(id, desc string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		AccountID:   "acc-1",
		TypeName:    domain.TypeDebit,
		CategoryID:  "cat-1",
		Amount:      decimal.NewFromInt(50),
		Description: desc,
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func pageWithTransactionID(id string) notionapi.Page {
	return notionapi.Page{
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: id}},
			},
		},
	}
}

func TestExportTransactionsCreatesPages(t *testing.T) {
	source := &fakeSource{txs: []domain.Transaction{
		sampleTx("tx-1", "coffee"),
		sampleTx("tx-2", "salary"),
	}}
	notion := &fakeNotion{}
	s := NewSyncer(source, notion, "db-1", zerolog.Nop())

	if err := s.ExportTransactions(context.Background(), "user-1", nil); err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	if len(notion.created) != 2 {
		t.Fatalf("created %d pages, want 2", len(notion.created))
	}
}

func TestExportTransactionsFiltersByID(t *testing.T) {
	source := &fakeSource{txs: []domain.Transaction{
		sampleTx("tx-1", "coffee"),
		sampleTx("tx-2", "salary"),
		sampleTx("tx-3", "rent"),
	}}
	notion := &fakeNotion{}
	s := NewSyncer(source, notion, "db-1", zerolog.Nop())

	if err := s.ExportTransactions(context.Background(), "user-1", []string{"tx-2"}); err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	if len(notion.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(notion.created))
	}
}

func TestExportTransactionsSkipsExisting(t *testing.T) {
	source := &fakeSource{txs: []domain.Transaction{
		sampleTx("tx-1", "coffee"),
		sampleTx("tx-2", "salary"),
	}}
	notion := &fakeNotion{existing: []notionapi.Page{pageWithTransactionID("tx-1")}}
	s := NewSyncer(source, notion, "db-1", zerolog.Nop())

	if err := s.ExportTransactions(context.Background(), "user-1", nil); err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	if len(notion.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(notion.created))
	}
}

func TestExportTransactionsReturnsFirstPageError(t *testing.T) {
	source := &fakeSource{txs: []domain.Transaction{sampleTx("tx-1", "coffee")}}
	notion := &fakeNotion{createErr: errors.New("notion down")}
	s := NewSyncer(source, notion, "db-1", zerolog.Nop())

	if err := s.ExportTransactions(context.Background(), "user-1", nil); err == nil {
		t.Fatal("expected error when page creation fails")
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	tx := sampleTx("tx-1", "coffee")
	props := TransactionToNotionProperties(&tx)

	title, ok := props["Description"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text.Content != "coffee" {
		t.Fatalf("unexpected Description property: %#v", props["Description"])
	}
	amount, ok := props["Amount"].(notionapi.NumberProperty)
	if !ok || amount.Number != 50 {
		t.Fatalf("unexpected Amount property: %#v", props["Amount"])
	}
	sel, ok := props["Type"].(notionapi.SelectProperty)
	if !ok || sel.Select.Name != domain.TypeDebit {
		t.Fatalf("unexpected Type property: %#v", props["Type"])
	}
	if _, ok := props["Transaction ID"]; !ok {
		t.Fatal("Transaction ID property missing")
	}
}
