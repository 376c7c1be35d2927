package pipeline

import (
	"github.com/dvloznov/pocketledger/internal/domain"
	"github.com/dvloznov/pocketledger/internal/ledger"
	"github.com/dvloznov/pocketledger/internal/statement"
)

// Ledger is the slice of the store the pipeline writes through. It exists
// so tests can substitute an in-memory implementation.
type Ledger interface {
	AppendTransactions(d ledger.Dataset, recs []domain.Record) error
	AppendSnapshots(snaps []domain.BalanceSnapshot) error
}

// TextExtractor turns a PDF file into per-page plain text. The brittle
// decoding concern stays behind this seam; the parsing regexes are
// testable against literal strings.
type TextExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// PDFTextExtractor is the production TextExtractor.
type PDFTextExtractor struct{}

func (PDFTextExtractor) ExtractPages(path string) ([]string, error) {
	return statement.ExtractPDFPages(path)
}
