package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical transaction type names. The lookup set in the store is fixed;
// matching is exact and case-sensitive.
const (
	TypeDebit  = "debit"
	TypeCredit = "credit"
)

// Draft is an unpersisted candidate transaction parsed from natural
// language. Field values come straight from the model reply and are not
// trusted until the committer validates and resolves them.
type Draft struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Description  string          `json:"description" validate:"required"`
	TypeName     string          `json:"type" validate:"required,oneof=debit credit"`
	CategoryName string          `json:"category" validate:"required"`
}

// Transaction is one persisted ledger record. Amount is always a
// magnitude; the sign of the monetary effect comes from the transaction
// type, never from the stored amount.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	TypeID      string          `json:"type_id"`
	TypeName    string          `json:"type_name"` // resolved for read paths
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"transaction_date"`
}

// Account is owned by exactly one user. Balance is a stored field that
// this module reads but never mutates.
type Account struct {
	ID      string          `json:"id"`
	OwnerID string          `json:"owner_id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// Category is a spending/income bucket. A nil OwnerID marks a global
// category visible to every user.
type Category struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	OwnerID *string `json:"owner_id,omitempty"`
}

// Visible reports whether the category can be used by the given user.
func (c Category) Visible(userID string) bool {
	return c.OwnerID == nil || *c.OwnerID == userID
}

// TransactionType is one entry of the fixed {debit, credit} lookup set.
type TransactionType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
