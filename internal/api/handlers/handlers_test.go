package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/api/middleware"
	"github.com/dvloznov/ledger-assistant/internal/assistant"
	"github.com/dvloznov/ledger-assistant/internal/currency"
	"github.com/dvloznov/ledger-assistant/internal/domain"
)

type fakeReader struct {
	accounts []domain.Account
	txs      []domain.Transaction
	err      error
	listCall int
}

func (f *fakeReader) ListAccountsByOwner(ctx context.Context, userID string) ([]domain.Account, error) {
	return f.accounts, f.err
}

func (f *fakeReader) ListTransactionsByOwner(ctx context.Context, userID string) ([]domain.Transaction, error) {
	f.listCall++
	return f.txs, f.err
}

type fakeModel struct {
	reply string
}

func (f *fakeModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

type fakeStore struct{}

func (f *fakeStore) ListAccountsByOwner(ctx context.Context, userID string) ([]domain.Account, error) {
	return []domain.Account{{ID: "acc-1", OwnerID: userID}}, nil
}

func (f *fakeStore) FindCategoryByName(ctx context.Context, name, userID string) (*domain.Category, error) {
	return &domain.Category{ID: "cat-1", Name: name}, nil
}

func (f *fakeStore) FindTransactionTypeByName(ctx context.Context, name string) (*domain.TransactionType, error) {
	return &domain.TransactionType{ID: "type-1", Name: name}, nil
}

func (f *fakeStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	return "tx-1", nil
}

func identified(r *http.Request, userID string) *http.Request {
	rec := httptest.NewRecorder()
	var out *http.Request
	middleware.Identify(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		out = req
	})).ServeHTTP(rec, withUserHeader(r, userID))
	return out
}

func withUserHeader(r *http.Request, userID string) *http.Request {
	r.Header.Set("X-User-ID", userID)
	return r
}

func TestPromptHandler(t *testing.T) {
	model := &fakeModel{reply: `{"transactions": [{"amount": 500, "description": "salary", "type": "credit", "category": "Salary"}]}`}
	ext := assistant.NewExtractor(model, nil, zerolog.Nop())
	com := assistant.NewCommitter(&fakeStore{}, zerolog.Nop())
	a := assistant.New(ext, com, nil, zerolog.Nop())

	h := NewAssistantHandler(a, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/prompt",
		strings.NewReader(`{"prompt": "I got my salary of 500"}`))
	req = identified(req, "user-1")
	rec := httptest.NewRecorder()

	h.Prompt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp assistant.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
}

func TestPromptHandlerRejectsEmptyPrompt(t *testing.T) {
	h := NewAssistantHandler(nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/prompt", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Prompt(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIdentifyRejectsMissingUser(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)

	middleware.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a user")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListTransactionsCaches(t *testing.T) {
	reader := &fakeReader{txs: []domain.Transaction{
		{ID: "tx-1", TypeName: domain.TypeCredit, Amount: decimal.NewFromInt(100), Date: time.Now()},
	}}
	h := NewTransactionsHandler(reader, zerolog.Nop())

	for i := 0; i < 2; i++ {
		req := identified(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "user-1")
		rec := httptest.NewRecorder()
		h.ListTransactions(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}

	if reader.listCall != 1 {
		t.Fatalf("store queried %d times, want 1 (second hit should come from cache)", reader.listCall)
	}
}

func TestInvalidateUserDropsCache(t *testing.T) {
	reader := &fakeReader{}
	h := NewTransactionsHandler(reader, zerolog.Nop())

	req := identified(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "user-1")
	h.ListTransactions(httptest.NewRecorder(), req)

	h.InvalidateUser("user-1")

	req = identified(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "user-1")
	h.ListTransactions(httptest.NewRecorder(), req)

	if reader.listCall != 2 {
		t.Fatalf("store queried %d times, want 2 after invalidation", reader.listCall)
	}
}

func TestListTransactionsError(t *testing.T) {
	reader := &fakeReader{err: errors.New("store down")}
	h := NewTransactionsHandler(reader, zerolog.Nop())

	req := identified(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "user-1")
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHistoryHandler(t *testing.T) {
	reader := &fakeReader{txs: []domain.Transaction{
		{ID: "tx-1", TypeName: domain.TypeCredit, Amount: decimal.NewFromInt(100),
			Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "tx-2", TypeName: domain.TypeDebit, Amount: decimal.NewFromInt(30),
			Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}
	h := NewTransactionsHandler(reader, zerolog.Nop())

	req := identified(httptest.NewRequest(http.MethodGet, "/api/history", nil), "user-1")
	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var series struct {
		Points []struct {
			Balance string `json:"balance"`
		} `json:"points"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&series); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(series.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(series.Points))
	}
	if series.Points[1].Balance != "70" {
		t.Fatalf("final balance = %s, want 70", series.Points[1].Balance)
	}
}

func TestListAccountsHandler(t *testing.T) {
	reader := &fakeReader{accounts: []domain.Account{{ID: "acc-1", OwnerID: "user-1"}}}
	h := NewAccountsHandler(reader, zerolog.Nop())

	req := identified(httptest.NewRequest(http.MethodGet, "/api/accounts", nil), "user-1")
	rec := httptest.NewRecorder()
	h.ListAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
}

func TestConvertHandler(t *testing.T) {
	h := NewCurrenciesHandler(currency.DefaultRates, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/currencies/convert?amount=100&from=USD&to=INR", nil)
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Converted string `json:"converted"`
		Exact     bool   `json:"exact"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Converted != "8312" {
		t.Fatalf("converted = %s, want 8312", body.Converted)
	}
	if !body.Exact {
		t.Fatal("expected direct USD to INR conversion to be exact")
	}
}

func TestConvertHandlerRejectsBadAmount(t *testing.T) {
	h := NewCurrenciesHandler(currency.DefaultRates, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/currencies/convert?amount=abc&from=USD&to=INR", nil)
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListCurrenciesHandler(t *testing.T) {
	h := NewCurrenciesHandler(currency.DefaultRates, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/currencies", nil)
	rec := httptest.NewRecorder()
	h.ListCurrencies(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Currencies []currency.Currency `json:"currencies"`
		Default    string              `json:"default"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Currencies) != len(currency.Supported) {
		t.Fatalf("got %d currencies, want %d", len(body.Currencies), len(currency.Supported))
	}
	if body.Default != currency.Default.Code {
		t.Fatalf("default = %s, want %s", body.Default, currency.Default.Code)
	}
}
