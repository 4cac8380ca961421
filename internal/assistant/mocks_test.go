package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// stubModel is a canned TextModel.
type stubModel struct {
	reply string
	err   error

	mu      sync.Mutex
	prompts []string
}

func (m *stubModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// fakeStore is an in-memory Store and CategorySource.
type fakeStore struct {
	mu         sync.Mutex
	accounts   []domain.Account
	categories []domain.Category
	types      []domain.TransactionType
	inserted   []domain.Transaction

	failInsert bool
	nextID     int
}

func ownerRef(id string) *string { return &id }

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: []domain.Account{
			{ID: "acc-1", OwnerID: "user-1", Name: "Main", Type: "checking"},
			{ID: "acc-2", OwnerID: "user-1", Name: "Savings", Type: "savings"},
		},
		categories: []domain.Category{
			{ID: "cat-salary", Name: "Salary"},
			{ID: "cat-groceries", Name: "Groceries"},
			{ID: "cat-private", Name: "Hobby", OwnerID: ownerRef("user-2")},
		},
		types: []domain.TransactionType{
			{ID: "type-debit", Name: "debit"},
			{ID: "type-credit", Name: "credit"},
		},
	}
}

func (s *fakeStore) ListAccountsByOwner(ctx context.Context, userID string) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range s.accounts {
		if a.OwnerID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) FindCategoryByName(ctx context.Context, name, userID string) (*domain.Category, error) {
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) && c.Visible(userID) {
			cat := c
			return &cat, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindTransactionTypeByName(ctx context.Context, name string) (*domain.TransactionType, error) {
	for _, t := range s.types {
		if t.Name == name {
			typ := t
			return &typ, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert {
		return "", errors.New("store write failed")
	}
	s.nextID++
	stored := *tx
	stored.ID = fmt.Sprintf("tx-%d", s.nextID)
	stored.Date = time.Now()
	s.inserted = append(s.inserted, stored)
	return stored.ID, nil
}

func (s *fakeStore) ListCategoryNames(ctx context.Context, userID string) ([]string, error) {
	var names []string
	for _, c := range s.categories {
		if c.Visible(userID) {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

// recordingRuns captures RunRecorder calls.
type recordingRuns struct {
	mu        sync.Mutex
	started   int
	outputs   []string
	failed    []error
	succeeded int
}

func (r *recordingRuns) StartExtractionRun(ctx context.Context, userID, promptText string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return fmt.Sprintf("run-%d", r.started), nil
}

func (r *recordingRuns) RecordModelOutput(ctx context.Context, runID, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs = append(r.outputs, raw)
	return nil
}

func (r *recordingRuns) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, runErr)
}

func (r *recordingRuns) MarkExtractionRunSucceeded(ctx context.Context, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded++
	return nil
}
