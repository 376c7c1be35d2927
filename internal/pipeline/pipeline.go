package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/pocketledger/internal/category"
	"github.com/dvloznov/pocketledger/internal/domain"
)

// Deps carries everything the pipeline steps need. Extractor may be nil,
// in which case the real PDF extractor is used.
type Deps struct {
	Ledger     Ledger
	Rules      *category.Engine
	Journal    *Journal
	Extractor  TextExtractor
	ArchiveDir string
	Log        zerolog.Logger
}

func (d *Deps) extractor() TextExtractor {
	if d.Extractor != nil {
		return d.Extractor
	}
	return PDFTextExtractor{}
}

// IngestBankStatement runs the full bank ingestion for one statement,
// given the PDF and its matching transactions CSV.
func IngestBankStatement(ctx context.Context, deps *Deps, pdfPath, csvPath string) error {
	state := &PipelineState{PDFPath: pdfPath, CSVPath: csvPath}

	deps.Log.Info().
		Str("pdf", pdfPath).
		Str("csv", csvPath).
		Msg("ingesting bank statement")

	if err := NewBankStatementPipeline(deps).Execute(ctx, state); err != nil {
		deps.Log.Error().Err(err).Str("run_id", state.RunID).Msg("bank ingestion failed")
		return err
	}

	deps.Log.Info().
		Str("run_id", state.RunID).
		Int("deposits", len(state.Deposits)).
		Int("withdrawals", len(state.Withdrawals)).
		Str("period_end", state.Period.End.Format(domain.DateFormat)).
		Msg("bank statement ingested")
	return nil
}

// IngestCreditCardExport runs the credit-card ingestion for one export
// CSV.
func IngestCreditCardExport(ctx context.Context, deps *Deps, csvPath string) error {
	state := &PipelineState{CSVPath: csvPath}

	deps.Log.Info().Str("csv", csvPath).Msg("ingesting credit card export")

	if err := NewCreditCardPipeline(deps).Execute(ctx, state); err != nil {
		deps.Log.Error().Err(err).Str("run_id", state.RunID).Msg("credit card ingestion failed")
		return err
	}

	deps.Log.Info().
		Str("run_id", state.RunID).
		Int("purchases", len(state.Purchases)).
		Msg("credit card export ingested")
	return nil
}

// InboxResult summarizes one pass over the inbox.
type InboxResult struct {
	BankStatements int
	CreditExports  int
	Skipped        int
}

// IngestInbox sweeps the inbox directory: every PDF under bank/ is
// ingested with its sibling CSV of the same stem, and every CSV under
// credit_card/ is ingested on its own. Already-ingested sources are
// skipped, not treated as failures; anything else aborts the sweep.
func IngestInbox(ctx context.Context, deps *Deps, inboxDir string) (InboxResult, error) {
	var res InboxResult

	pdfs, err := listByExt(filepath.Join(inboxDir, "bank"), ".pdf")
	if err != nil {
		return res, err
	}
	for _, pdfPath := range pdfs {
		csvPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".csv"
		if _, err := os.Stat(csvPath); err != nil {
			return res, fmt.Errorf("bank statement %s has no matching csv: %w", filepath.Base(pdfPath), err)
		}
		switch err := IngestBankStatement(ctx, deps, pdfPath, csvPath); {
		case err == nil:
			res.BankStatements++
		case errors.Is(err, domain.ErrAlreadyIngested):
			deps.Log.Warn().Str("pdf", pdfPath).Msg("skipping already ingested statement")
			res.Skipped++
		default:
			return res, err
		}
	}

	exports, err := listByExt(filepath.Join(inboxDir, "credit_card"), ".csv")
	if err != nil {
		return res, err
	}
	for _, csvPath := range exports {
		switch err := IngestCreditCardExport(ctx, deps, csvPath); {
		case err == nil:
			res.CreditExports++
		case errors.Is(err, domain.ErrAlreadyIngested):
			deps.Log.Warn().Str("csv", csvPath).Msg("skipping already ingested export")
			res.Skipped++
		default:
			return res, err
		}
	}

	return res, nil
}

// listByExt returns files in dir with the given extension, sorted by
// name. A missing dir is an empty inbox, not an error.
func listByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
