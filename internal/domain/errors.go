package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparseableStatement means a statement file is missing the
	// structural markers the parser scans for. The source file must be
	// left in place so the ingestion can be retried.
	ErrUnparseableStatement = errors.New("statement missing expected structure")

	// ErrDatasetMissing means an aggregation was requested on a dataset
	// that has never been populated.
	ErrDatasetMissing = errors.New("dataset has not been populated")

	// ErrNoPaycheckData means an income aggregation found no Paycheck
	// rows inside the requested window.
	ErrNoPaycheckData = errors.New("no paycheck rows in window")

	// ErrAlreadyIngested means a source file with an identical checksum
	// has been merged before. Re-running would duplicate every row.
	ErrAlreadyIngested = errors.New("statement already ingested")
)

// MalformedAmountError reports a currency field that failed to parse.
// One malformed amount aborts the whole ingestion rather than silently
// skipping the row.
type MalformedAmountError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount in %s: %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedAmountError) Unwrap() error { return e.Err }
