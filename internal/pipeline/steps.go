package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dvloznov/pocketledger/internal/domain"
	"github.com/dvloznov/pocketledger/internal/ledger"
	"github.com/dvloznov/pocketledger/internal/logger"
	"github.com/dvloznov/pocketledger/internal/statement"
)

// PipelineStep represents a single step in an ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// RegisterRunStep hashes the source files and opens a run in the journal.
// A checksum that already succeeded aborts the ingestion before anything
// is parsed or written.
type RegisterRunStep struct {
	deps *Deps
}

func (s *RegisterRunStep) Execute(ctx context.Context, state *PipelineState) error {
	checksum, err := ChecksumFiles(state.sources()...)
	if err != nil {
		return err
	}
	state.Checksum = checksum

	runID, err := s.deps.Journal.Start(checksum, state.sources())
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// ExtractTextStep pulls per-page plain text out of the statement PDF.
type ExtractTextStep struct {
	deps *Deps
}

func (s *ExtractTextStep) Execute(ctx context.Context, state *PipelineState) error {
	pages, err := s.deps.extractor().ExtractPages(state.PDFPath)
	if err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	state.Pages = pages
	return nil
}

// ParsePDFStep scans the page text for the statement period and balance
// summary.
type ParsePDFStep struct {
	deps *Deps
}

func (s *ParsePDFStep) Execute(ctx context.Context, state *PipelineState) error {
	period, snap, err := statement.ParsePDFStatement(state.Pages)
	if err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	state.Period = period
	state.Snapshot = snap
	return nil
}

// ParseBankCSVStep categorizes and splits the bank CSV rows, bounded by
// the statement period the PDF established.
type ParseBankCSVStep struct {
	deps *Deps
}

func (s *ParseBankCSVStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := os.Open(state.CSVPath)
	if err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return fmt.Errorf("opening bank csv: %w", err)
	}
	defer f.Close()

	deposits, withdrawals, err := statement.ParseBankCSV(f, s.deps.Rules, state.Period)
	if err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	state.Deposits = deposits
	state.Withdrawals = withdrawals
	return nil
}

// ParseCreditCardStep parses a credit-card export into purchase records.
type ParseCreditCardStep struct {
	deps *Deps
}

func (s *ParseCreditCardStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := os.Open(state.CSVPath)
	if err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return fmt.Errorf("opening credit card csv: %w", err)
	}
	defer f.Close()

	purchases, err := statement.ParseCreditCardExport(f, s.deps.Rules)
	if err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	state.Purchases = purchases
	return nil
}

// AppendBankLedgersStep merges the parsed records into the balance
// snapshot, deposits, and withdrawals datasets.
type AppendBankLedgersStep struct {
	deps *Deps
}

func (s *AppendBankLedgersStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.deps.Ledger.AppendSnapshots([]domain.BalanceSnapshot{state.Snapshot}); err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	if err := s.deps.Ledger.AppendTransactions(ledger.DatasetDeposits, state.Deposits); err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	depositsLog := logger.WithDataset(s.deps.Log, string(ledger.DatasetDeposits))
	depositsLog.Debug().Int("rows", len(state.Deposits)).Msg("appended records")

	if err := s.deps.Ledger.AppendTransactions(ledger.DatasetWithdrawals, state.Withdrawals); err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	withdrawalsLog := logger.WithDataset(s.deps.Log, string(ledger.DatasetWithdrawals))
	withdrawalsLog.Debug().Int("rows", len(state.Withdrawals)).Msg("appended records")
	return nil
}

// AppendCreditCardStep merges parsed purchases into the credit-card
// dataset.
type AppendCreditCardStep struct {
	deps *Deps
}

func (s *AppendCreditCardStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.deps.Ledger.AppendTransactions(ledger.DatasetCreditCard, state.Purchases); err != nil {
		s.deps.Journal.MarkFailed(state.RunID, err)
		return err
	}
	creditCardLog := logger.WithDataset(s.deps.Log, string(ledger.DatasetCreditCard))
	creditCardLog.Debug().Int("rows", len(state.Purchases)).Msg("appended records")
	return nil
}

// ArchiveSourcesStep moves the consumed source files into the archive
// directory so the inbox only ever holds unprocessed statements. Failed
// ingestions never reach this step, leaving their files in place for a
// retry.
type ArchiveSourcesStep struct {
	deps *Deps
}

func (s *ArchiveSourcesStep) Execute(ctx context.Context, state *PipelineState) error {
	for _, src := range state.sources() {
		if err := archiveFile(src, s.deps.ArchiveDir); err != nil {
			s.deps.Journal.MarkFailed(state.RunID, err)
			return err
		}
	}
	return nil
}

func archiveFile(src, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archiving %s: %w", src, err)
	}
	return nil
}

// MarkSuccessStep closes out the run in the journal.
type MarkSuccessStep struct {
	deps *Deps
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	return s.deps.Journal.MarkSucceeded(state.RunID)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
	}
	return nil
}

// NewBankStatementPipeline builds the full bank ingestion: register,
// extract, parse PDF, parse CSV, append, archive, mark success.
func NewBankStatementPipeline(deps *Deps) *Pipeline {
	return NewPipeline(
		&RegisterRunStep{deps},
		&ExtractTextStep{deps},
		&ParsePDFStep{deps},
		&ParseBankCSVStep{deps},
		&AppendBankLedgersStep{deps},
		&ArchiveSourcesStep{deps},
		&MarkSuccessStep{deps},
	)
}

// NewCreditCardPipeline builds the shorter credit-card ingestion.
func NewCreditCardPipeline(deps *Deps) *Pipeline {
	return NewPipeline(
		&RegisterRunStep{deps},
		&ParseCreditCardStep{deps},
		&AppendCreditCardStep{deps},
		&ArchiveSourcesStep{deps},
		&MarkSuccessStep{deps},
	)
}
