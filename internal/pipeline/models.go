package pipeline

import (
	"github.com/dvloznov/pocketledger/internal/domain"
)

// PipelineState holds the shared state across all pipeline steps for one
// statement ingestion.
type PipelineState struct {
	// Source files. CSVPath is always set; PDFPath only for bank
	// statement ingestions.
	PDFPath string
	CSVPath string

	// Identity of this ingestion.
	RunID    string
	Checksum string

	// Extracted along the way.
	Pages    []string
	Period   domain.Period
	Snapshot domain.BalanceSnapshot

	// Parsed records waiting to be appended.
	Deposits    []domain.Record
	Withdrawals []domain.Record
	Purchases   []domain.Record
}

// sources lists the files this ingestion consumes, for the runs journal.
func (s *PipelineState) sources() []string {
	var out []string
	if s.PDFPath != "" {
		out = append(out, s.PDFPath)
	}
	if s.CSVPath != "" {
		out = append(out, s.CSVPath)
	}
	return out
}
