package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledger-assistant/internal/assistant"
	"github.com/dvloznov/ledger-assistant/internal/currency"
	"github.com/dvloznov/ledger-assistant/internal/history"
	infraBQ "github.com/dvloznov/ledger-assistant/internal/infra/bigquery"
	"github.com/dvloznov/ledger-assistant/internal/logger"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "assist":
		runAssist(log)
	case "convert":
		runConvert(log)
	case "history":
		runHistory(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Ledger Assistant CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  assist    Record transactions from a natural-language request")
	fmt.Println("  convert   Convert an amount between currencies")
	fmt.Println("  history   Print the balance history for a user")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAssist(log zerolog.Logger) {
	fs := flag.NewFlagSet("assist", flag.ExitOnError)
	userID := fs.String("user", "", "User ID the transactions belong to")
	prompt := fs.String("prompt", "", "Natural-language request, e.g. \"I spent 50 on groceries\"")
	projectID := fs.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID")
	datasetID := fs.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset")
	fs.Parse(os.Args[2:])

	if *userID == "" || *prompt == "" {
		log.Fatal().Msg("Usage: cli assist -user ID -prompt TEXT")
	}
	if *projectID == "" {
		log.Fatal().Msg("Error: --project or GCP_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	model, err := assistant.NewGeminiModel(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini model")
	}

	asst := assistant.New(
		assistant.NewExtractor(model, repo, log),
		assistant.NewCommitter(repo, log),
		repo,
		log,
	)

	resp := asst.HandlePrompt(ctx, *userID, *prompt)
	fmt.Println(resp.Message)
	if !resp.Success {
		os.Exit(1)
	}
}

func runConvert(log zerolog.Logger) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	amountStr := fs.String("amount", "", "Amount to convert")
	from := fs.String("from", currency.Default.Code, "Source currency code")
	to := fs.String("to", currency.Default.Code, "Target currency code")
	fs.Parse(os.Args[2:])

	if *amountStr == "" {
		log.Fatal().Msg("Usage: cli convert -amount N -from CODE -to CODE")
	}

	amount, err := decimal.NewFromString(*amountStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid amount")
	}

	converted := currency.DefaultRates.Convert(amount, *from, *to)

	fromCur := currency.ByCode(*from)
	toCur := currency.ByCode(*to)
	fmt.Printf("%s%s %s = %s%s %s\n",
		fromCur.Symbol, amount, *from,
		toCur.Symbol, converted, *to)

	if *from != *to && !currency.DefaultRates.HasDirect(*from, *to) {
		fmt.Println("(approximate: bridged through USD)")
	}
}

func runHistory(log zerolog.Logger) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to report on")
	projectID := fs.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID")
	datasetID := fs.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Usage: cli history -user ID")
	}
	if *projectID == "" {
		log.Fatal().Msg("Error: --project or GCP_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, *projectID, *datasetID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	txs, err := repo.ListTransactionsByOwner(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	series := history.Aggregate(txs)
	for _, p := range series.Points {
		fmt.Printf("%s  %10s  %s\n", p.Date, p.Balance, p.Transaction.Description)
	}
	fmt.Printf("\nrange [%s, %s], zero line at %.2f\n", series.Min, series.Max, series.ZeroLine)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
