package assistant

import (
	"context"

	"github.com/dvloznov/ledger-assistant/internal/domain"
)

// TextModel is the black-box completion service: one prompt in, raw text
// out. The production implementation calls Gemini; tests stub it.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Store is the slice of the record store the assistant needs. Lookup
// methods return (nil, nil) when nothing matches.
type Store interface {
	// ListAccountsByOwner returns the user's accounts in stable
	// creation order; the committer's default account is the first.
	ListAccountsByOwner(ctx context.Context, userID string) ([]domain.Account, error)

	// FindCategoryByName matches case-insensitively among categories
	// owned by the user or global (no owner).
	FindCategoryByName(ctx context.Context, name, userID string) (*domain.Category, error)

	// FindTransactionTypeByName matches exactly and case-sensitively.
	FindTransactionTypeByName(ctx context.Context, name string) (*domain.TransactionType, error)

	// InsertTransaction persists one record and returns its ID. The
	// transaction date is defaulted by the store to "now".
	InsertTransaction(ctx context.Context, tx *domain.Transaction) (string, error)
}

// CategorySource supplies the closed category set embedded in the
// extraction prompt.
type CategorySource interface {
	ListCategoryNames(ctx context.Context, userID string) ([]string, error)
}

// RunRecorder archives extraction runs and raw model output for audit.
// All recording is best-effort; failures never surface to the user.
type RunRecorder interface {
	StartExtractionRun(ctx context.Context, userID, promptText string) (string, error)
	RecordModelOutput(ctx context.Context, runID, raw string) error
	MarkExtractionRunFailed(ctx context.Context, runID string, runErr error)
	MarkExtractionRunSucceeded(ctx context.Context, runID string) error
}
