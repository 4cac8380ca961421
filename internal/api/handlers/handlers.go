// Package handlers wires the assistant pipeline, the record store, and
// the reporting views behind the HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/api/middleware"
	"github.com/dvloznov/ledger-assistant/internal/assistant"
	"github.com/dvloznov/ledger-assistant/internal/currency"
	"github.com/dvloznov/ledger-assistant/internal/domain"
	"github.com/dvloznov/ledger-assistant/internal/history"
	"github.com/dvloznov/ledger-assistant/internal/jobs"
)

// LedgerReader is the read side of the record store used by listing and
// reporting endpoints.
type LedgerReader interface {
	ListAccountsByOwner(ctx context.Context, userID string) ([]domain.Account, error)
	ListTransactionsByOwner(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// AssistantHandler handles POST /api/assistant/prompt.
type AssistantHandler struct {
	assistant *assistant.Assistant
	log       zerolog.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(a *assistant.Assistant, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: a, log: log}
}

// Prompt handles POST /api/assistant/prompt.
// The pipeline runs synchronously; the model call dominates latency.
func (h *AssistantHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Prompt == "" {
		middleware.WriteError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	userID := middleware.UserFromContext(r.Context())
	resp := h.assistant.HandlePrompt(r.Context(), userID, req.Prompt)

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// TransactionsHandler handles transaction listing and history endpoints.
// Listings are cached per user and invalidated when the assistant
// commits new records.
type TransactionsHandler struct {
	reader LedgerReader
	cache  *cache.Cache
	log    zerolog.Logger
}

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// NewTransactionsHandler creates a new transactions handler with its own
// listing cache.
func NewTransactionsHandler(reader LedgerReader, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		reader: reader,
		cache:  cache.New(cacheTTL, cacheCleanup),
		log:    log,
	}
}

// InvalidateUser drops the cached listing for one user. Hooked into the
// assistant's commit notification.
func (h *TransactionsHandler) InvalidateUser(userID string) {
	h.cache.Delete(userID)
}

// ListTransactions handles GET /api/transactions.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserFromContext(ctx)

	if cached, found := h.cache.Get(userID); found {
		middleware.WriteJSON(w, http.StatusOK, cached)
		return
	}

	transactions, err := h.reader.ListTransactionsByOwner(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	h.cache.SetDefault(userID, transactions)

	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// History handles GET /api/history.
func (h *TransactionsHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserFromContext(ctx)

	transactions, err := h.reader.ListTransactionsByOwner(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build history")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, history.Aggregate(transactions))
}

// AccountsHandler handles account-related endpoints.
type AccountsHandler struct {
	reader LedgerReader
	log    zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(reader LedgerReader, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{reader: reader, log: log}
}

// ListAccounts handles GET /api/accounts.
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserFromContext(ctx)

	accounts, err := h.reader.ListAccountsByOwner(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CurrenciesHandler handles currency reference and conversion endpoints.
type CurrenciesHandler struct {
	rates currency.Rates
	log   zerolog.Logger
}

// NewCurrenciesHandler creates a new currencies handler over the given
// rate table.
func NewCurrenciesHandler(rates currency.Rates, log zerolog.Logger) *CurrenciesHandler {
	return &CurrenciesHandler{rates: rates, log: log}
}

// ListCurrencies handles GET /api/currencies.
func (h *CurrenciesHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currencies": currency.Supported,
		"default":    currency.Default.Code,
	})
}

// Convert handles GET /api/currencies/convert?amount=&from=&to=.
func (h *CurrenciesHandler) Convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	amountStr := query.Get("amount")
	from := query.Get("from")
	to := query.Get("to")

	if amountStr == "" || from == "" || to == "" {
		middleware.WriteError(w, http.StatusBadRequest, "amount, from and to are required")
		return
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	converted := h.rates.Convert(amount, from, to)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"converted": converted,
		"exact":     from == to || h.rates.HasDirect(from, to),
	})
}

// JobsHandler handles export job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserFromContext(ctx)

	filter := jobs.JobFilter{
		UserID: userID,
		Status: jobs.JobStatus(r.URL.Query().Get("status")),
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
