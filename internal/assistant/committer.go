package assistant

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// CommitOptions selects the target account. An empty AccountID falls
// back to the user's first account, an arbitrary but stable choice
// (creation order); pass an explicit ID to disambiguate.
type CommitOptions struct {
	AccountID string
}

// DraftResult is the outcome of one draft in a batch.
type DraftResult struct {
	Index         int
	TransactionID string
	Err           error
}

// CommitResult aggregates per-draft outcomes. Drafts commit
// independently, so a batch can be partially successful; nothing is
// rolled back and nothing is hidden.
type CommitResult struct {
	Results   []DraftResult
	Committed int
}

// Failed returns the results that carry an error.
func (r *CommitResult) Failed() []DraftResult {
	var failed []DraftResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Committer resolves draft references against the store and persists
// validated drafts as ledger transactions.
type Committer struct {
	store    Store
	validate *validator.Validate
	log      zerolog.Logger
}

// NewCommitter creates a committer. Draft amounts are decimals, so a
// custom type func teaches the validator to treat them as floats for
// the gt=0 check.
func NewCommitter(store Store, log zerolog.Logger) *Committer {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return &Committer{store: store, validate: v, log: log}
}

// Commit resolves and persists the drafts for the given user. The
// account resolves once for the whole batch; each draft then validates,
// resolves its category and type, and inserts concurrently and
// independently. Sibling failures neither block nor undo each other.
func (c *Committer) Commit(ctx context.Context, userID string, drafts []domain.Draft, opts CommitOptions) (*CommitResult, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	account, err := c.resolveAccount(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{Results: make([]DraftResult, len(drafts))}

	var wg sync.WaitGroup
	for i, draft := range drafts {
		wg.Add(1)
		go func(i int, draft domain.Draft) {
			defer wg.Done()
			id, err := c.commitOne(ctx, userID, account, draft)
			result.Results[i] = DraftResult{Index: i, TransactionID: id, Err: err}
		}(i, draft)
	}
	wg.Wait()

	for _, res := range result.Results {
		if res.Err == nil {
			result.Committed++
		} else {
			c.log.Warn().Err(res.Err).Int("draft", res.Index).Msg("Draft not committed")
		}
	}
	return result, nil
}

func (c *Committer) resolveAccount(ctx context.Context, userID string, opts CommitOptions) (*domain.Account, error) {
	accounts, err := c.store.ListAccountsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Commit: listing accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}
	if opts.AccountID == "" {
		return &accounts[0], nil
	}
	for i := range accounts {
		if accounts[i].ID == opts.AccountID {
			return &accounts[i], nil
		}
	}
	return nil, ErrAccountNotFound
}

func (c *Committer) commitOne(ctx context.Context, userID string, account *domain.Account, draft domain.Draft) (string, error) {
	if err := c.validate.Struct(draft); err != nil {
		return "", fmt.Errorf("invalid draft: %w", err)
	}

	category, err := c.store.FindCategoryByName(ctx, draft.CategoryName, userID)
	if err != nil {
		return "", fmt.Errorf("resolving category: %w", err)
	}
	if category == nil {
		return "", &LookupError{Kind: "category", Name: draft.CategoryName}
	}

	txType, err := c.store.FindTransactionTypeByName(ctx, draft.TypeName)
	if err != nil {
		return "", fmt.Errorf("resolving type: %w", err)
	}
	if txType == nil {
		return "", &LookupError{Kind: "type", Name: draft.TypeName}
	}

	id, err := c.store.InsertTransaction(ctx, &domain.Transaction{
		AccountID:   account.ID,
		TypeID:      txType.ID,
		TypeName:    txType.Name,
		CategoryID:  category.ID,
		Amount:      draft.Amount,
		Description: draft.Description,
	})
	if err != nil {
		return "", fmt.Errorf("inserting transaction: %w", err)
	}
	return id, nil
}
