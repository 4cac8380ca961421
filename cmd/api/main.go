package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/ledger-assistant/internal/api/handlers"
	"github.com/dvloznov/ledger-assistant/internal/api/middleware"
	"github.com/dvloznov/ledger-assistant/internal/assistant"
	"github.com/dvloznov/ledger-assistant/internal/currency"
	infraBQ "github.com/dvloznov/ledger-assistant/internal/infra/bigquery"
	"github.com/dvloznov/ledger-assistant/internal/jobs"
	"github.com/dvloznov/ledger-assistant/internal/jobs/inmemory"
	"github.com/dvloznov/ledger-assistant/internal/logger"
	"github.com/dvloznov/ledger-assistant/internal/notionsync"
)

func main() {
	// Parse command-line flags
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		projectID = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		datasetID = flag.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset (or set BQ_DATASET env)")
		notionDB  = flag.String("notion-db", os.Getenv("NOTION_TRANSACTIONS_DB"), "Notion database ID for transaction export (or set NOTION_TRANSACTIONS_DB env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("GCP project is required (use -project or GCP_PROJECT)")
	}

	ctx := context.Background()

	// Initialize record store
	repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	// Initialize the assistant pipeline
	model, err := assistant.NewGeminiModel(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini model")
	}

	extractor := assistant.NewExtractor(model, repo, log)
	committer := assistant.NewCommitter(repo, log)
	asst := assistant.New(extractor, committer, repo, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Notion export is optional; without a token or database the hook
	// only invalidates the listing cache.
	var syncer *notionsync.Syncer
	notionToken := os.Getenv("NOTION_TOKEN")
	if notionToken != "" && *notionDB != "" {
		syncer = notionsync.NewSyncer(repo, notionsync.NewNotionClient(notionToken), *notionDB, log)
	} else {
		log.Warn().Msg("Notion export disabled - set NOTION_TOKEN and -notion-db to enable")
	}

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		exportJob, ok := job.(*jobs.ExportTransactionsJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		if syncer == nil {
			return nil
		}

		log.Info().
			Str("job_id", exportJob.JobID).
			Str("user_id", exportJob.UserID).
			Int("transactions", len(exportJob.TransactionIDs)).
			Msg("Processing export job")

		return syncer.ExportTransactions(ctx, exportJob.UserID, exportJob.TransactionIDs)
	}

	go func() {
		log.Info().Msg("Starting export worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Export worker stopped with error")
		}
	}()

	// Initialize handlers
	assistantHandler := handlers.NewAssistantHandler(asst, log)
	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	accountsHandler := handlers.NewAccountsHandler(repo, log)
	currenciesHandler := handlers.NewCurrenciesHandler(currency.DefaultRates, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// A successful commit drops the user's cached listing and enqueues
	// a Notion export for the new records.
	asst.OnCommit = func(userID string, transactionIDs []string) {
		transactionsHandler.InvalidateUser(userID)

		job := &jobs.ExportTransactionsJob{
			UserID:         userID,
			TransactionIDs: transactionIDs,
		}
		if err := jobQueue.PublishExportTransactions(context.Background(), job); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to enqueue export job")
		}
	}

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/assistant/prompt", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assistantHandler.Prompt(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.History(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			accountsHandler.ListAccounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/currencies", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			currenciesHandler.ListCurrencies(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/currencies/convert", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			currenciesHandler.Convert(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check stays outside Identify so probes need no user header
	api := middleware.Identify(mux)

	root := http.NewServeMux()
	root.Handle("/api/", api)
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(root),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // the model call can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
