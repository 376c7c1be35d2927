package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/pocketledger/internal/category"
	"github.com/dvloznov/pocketledger/internal/config"
	"github.com/dvloznov/pocketledger/internal/ledger"
	"github.com/dvloznov/pocketledger/internal/logger"
	"github.com/dvloznov/pocketledger/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	// Initialize structured logger
	log := logger.New()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Parse CLI flags
	inbox := flag.String("inbox", cfg.InboxDir, "Inbox directory holding bank/ and credit_card/ statements")
	flag.Parse()

	rules, err := loadRules(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load categorization rules")
	}

	store := ledger.NewStore(cfg.DataDir)
	deps := &pipeline.Deps{
		Ledger:     store,
		Rules:      rules,
		Journal:    pipeline.NewJournal(cfg.JournalPath()),
		ArchiveDir: cfg.ArchiveDir,
		Log:        log,
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("inbox", *inbox).Msg("Starting ingestion")

	res, err := pipeline.IngestInbox(ctx, deps, *inbox)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingested %d bank statement(s), %d credit card export(s), skipped %d.\n",
		res.BankStatements, res.CreditExports, res.Skipped)
}

func loadRules(cfg *config.Config) (*category.Engine, error) {
	if cfg.RulesFile != "" {
		return category.LoadFromFile(cfg.RulesFile)
	}
	return category.LoadEmbedded()
}
