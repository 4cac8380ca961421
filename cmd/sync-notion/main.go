package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	infraBQ "github.com/dvloznov/ledger-assistant/internal/infra/bigquery"
	"github.com/dvloznov/ledger-assistant/internal/logger"
	"github.com/dvloznov/ledger-assistant/internal/notionsync"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	userID := flag.String("user", "", "User ID whose transactions to export (required)")
	notionToken := flag.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := flag.String("notion-db-id", os.Getenv("NOTION_TRANSACTIONS_DB"), "Notion database ID (or set NOTION_TRANSACTIONS_DB env)")
	projectID := flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
	datasetID := flag.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset (or set BQ_DATASET env)")
	flag.Parse()

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token or NOTION_TOKEN is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id or NOTION_TRANSACTIONS_DB is required")
	}
	if *projectID == "" {
		log.Fatal().Msg("Error: --project or GCP_PROJECT is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("user_id", *userID).Msg("Starting Notion export")

	repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	syncer := notionsync.NewSyncer(repo, notionsync.NewNotionClient(*notionToken), *notionDBID, log)

	// An empty ID set exports everything the user has
	if err := syncer.ExportTransactions(ctx, *userID, nil); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Println("Export completed successfully.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
