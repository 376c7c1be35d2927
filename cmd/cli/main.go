package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/aggregate"
	"github.com/dvloznov/pocketledger/internal/category"
	"github.com/dvloznov/pocketledger/internal/config"
	"github.com/dvloznov/pocketledger/internal/domain"
	"github.com/dvloznov/pocketledger/internal/ledger"
	"github.com/dvloznov/pocketledger/internal/logger"
	"github.com/dvloznov/pocketledger/internal/pipeline"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(log)
	case "spending":
		runSpending(log)
	case "income":
		runIncome(log)
	case "savings":
		runSavings(log)
	case "assets":
		runAssets(log)
	case "invest":
		runInvest(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Pocket Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest    Sweep the inbox directory and ingest new statements")
	fmt.Println("  spending  Show spending aggregates or a per-category breakdown")
	fmt.Println("  income    Show paycheck income over a lookback window")
	fmt.Println("  savings   Show net savings over a lookback window")
	fmt.Println("  assets    Show total assets across accounts and investments")
	fmt.Println("  invest    Record an investment entry")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// loadApp builds the shared wiring every subcommand needs.
func loadApp(log zerolog.Logger) (*config.Config, *ledger.Store, *aggregate.Aggregator, *pipeline.Deps) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	var rules *category.Engine
	var err error
	if cfg.RulesFile != "" {
		rules, err = category.LoadFromFile(cfg.RulesFile)
	} else {
		rules, err = category.LoadEmbedded()
	}
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
	return cfg, store, aggregate.New(store), deps
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	inbox := fs.String("inbox", "", "Inbox directory (default from INBOX_DIR)")
	fs.Parse(os.Args[2:])

	cfg, _, _, deps := loadApp(log)
	dir := *inbox
	if dir == "" {
		dir = cfg.InboxDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	res, err := pipeline.IngestInbox(ctx, deps, dir)
	if err != nil {
		red.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}

	green.Printf("Ingested %d bank statement(s), %d credit card export(s)\n",
		res.BankStatements, res.CreditExports)
	if res.Skipped > 0 {
		yellow.Printf("Skipped %d already ingested file(s)\n", res.Skipped)
	}
}

func runSpending(log zerolog.Logger) {
	fs := flag.NewFlagSet("spending", flag.ExitOnError)
	cumulative := fs.Bool("cumulative", false, "Sum instead of monthly average")
	months := fs.Int("months", 0, "Lookback window in months (0 = latest month)")
	source := fs.String("source", "", "Breakdown source: bank or credit (empty = category totals)")
	year := fs.Int("year", 0, "Breakdown year")
	month := fs.Int("month", 0, "Breakdown month (1-12)")
	fs.Parse(os.Args[2:])

	_, _, agg, _ := loadApp(log)

	if *source != "" {
		q := aggregate.RangeQuery{Year: *year, Month: *month}
		breakdown, label, err := agg.SpendingBreakdown(aggregate.Source(*source), q)
		if err != nil {
			red.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		yellow.Printf("Spending breakdown (%s)\n", label)
		printBreakdown(breakdown)
		return
	}

	spending, err := agg.Spending(*cumulative, *months)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	yellow.Println(windowTitle("Spending", *cumulative, *months))
	printAmount(domain.CategoryRent, spending.Rent)
	printAmount(domain.CategoryCreditCard, spending.CreditCard)
	printAmount(domain.CategoryMisc, spending.Misc)
}

func runIncome(log zerolog.Logger) {
	fs := flag.NewFlagSet("income", flag.ExitOnError)
	cumulative := fs.Bool("cumulative", false, "Sum instead of monthly average")
	months := fs.Int("months", 0, "Lookback window in months (0 = latest month)")
	fs.Parse(os.Args[2:])

	_, _, agg, _ := loadApp(log)

	income, err := agg.Income(*cumulative, *months)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	yellow.Println(windowTitle("Income", *cumulative, *months))
	printAmount("Paycheck", income)
}

func runSavings(log zerolog.Logger) {
	fs := flag.NewFlagSet("savings", flag.ExitOnError)
	cumulative := fs.Bool("cumulative", false, "Sum instead of monthly average")
	months := fs.Int("months", 0, "Lookback window in months (0 = latest month)")
	fs.Parse(os.Args[2:])

	_, _, agg, _ := loadApp(log)

	savings, err := agg.NetSavings(*cumulative, *months)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	yellow.Println(windowTitle("Net savings", *cumulative, *months))
	printAmount("Net", savings)
}

func runAssets(log zerolog.Logger) {
	fs := flag.NewFlagSet("assets", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	_, _, agg, _ := loadApp(log)

	total, err := agg.TotalAssets()
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	yellow.Println("Total assets")
	printAmount("Total", total)
}

func runInvest(log zerolog.Logger) {
	fs := flag.NewFlagSet("invest", flag.ExitOnError)
	date := fs.String("date", time.Now().Format(domain.DateFormat), "Entry date (YYYY-MM-DD)")
	instrument := fs.String("instrument", "", "Instrument name (e.g. etrade, retirement)")
	amount := fs.String("amount", "", "Current value of the instrument")
	fs.Parse(os.Args[2:])

	if *instrument == "" || *amount == "" {
		red.Fprintln(os.Stderr, "Error: --instrument and --amount are required")
		os.Exit(1)
	}

	day, err := time.Parse(domain.DateFormat, *date)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: invalid date %q, want YYYY-MM-DD\n", *date)
		os.Exit(1)
	}
	value, err := decimal.NewFromString(*amount)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: invalid amount %q\n", *amount)
		os.Exit(1)
	}

	_, store, _, _ := loadApp(log)

	rec := domain.Record{Date: day, Amount: value, Category: *instrument}
	if err := store.AppendTransactions(ledger.DatasetInvestments, []domain.Record{rec}); err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	green.Printf("Recorded %s = %s on %s\n", *instrument, value.StringFixed(2), *date)
}

func windowTitle(what string, cumulative bool, months int) string {
	mode := "monthly average"
	if cumulative {
		mode = "cumulative"
	}
	if months > 0 {
		return fmt.Sprintf("%s, last %d month(s), %s", what, months, mode)
	}
	return fmt.Sprintf("%s, latest month, %s", what, mode)
}

func printAmount(label string, amount decimal.Decimal) {
	fmt.Printf("  %-14s %12s\n", label, amount.StringFixed(2))
}

func printBreakdown(breakdown map[string]decimal.Decimal) {
	categories := make([]string, 0, len(breakdown))
	for cat := range breakdown {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		printAmount(cat, breakdown[cat])
	}
}
