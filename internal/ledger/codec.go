package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
)

// Row codecs for the two dataset shapes. Dates are stored as YYYY-MM-DD
// and amounts as plain decimals with no currency symbol; the files must
// round-trip exactly.

func encodeRecord(r domain.Record) []string {
	return []string{
		r.Date.Format(domain.DateFormat),
		r.Amount.String(),
		r.Category,
	}
}

func decodeRecord(row []string) (domain.Record, error) {
	if len(row) != 3 {
		return domain.Record{}, fmt.Errorf("want 3 fields, got %d", len(row))
	}
	date, err := time.Parse(domain.DateFormat, row[0])
	if err != nil {
		return domain.Record{}, fmt.Errorf("parsing date %q: %w", row[0], err)
	}
	amount, err := decimal.NewFromString(row[1])
	if err != nil {
		return domain.Record{}, fmt.Errorf("parsing amount %q: %w", row[1], err)
	}
	return domain.Record{Date: date, Amount: amount, Category: row[2]}, nil
}

func encodeSnapshot(s domain.BalanceSnapshot) []string {
	return []string{
		s.Date.Format(domain.DateFormat),
		s.Total.String(),
		s.Added.String(),
		s.Lost.String(),
	}
}

func decodeSnapshot(row []string) (domain.BalanceSnapshot, error) {
	if len(row) != 4 {
		return domain.BalanceSnapshot{}, fmt.Errorf("want 4 fields, got %d", len(row))
	}
	date, err := time.Parse(domain.DateFormat, row[0])
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("parsing date %q: %w", row[0], err)
	}
	var amounts [3]decimal.Decimal
	for i, field := range row[1:] {
		amounts[i], err = decimal.NewFromString(field)
		if err != nil {
			return domain.BalanceSnapshot{}, fmt.Errorf("parsing %q: %w", field, err)
		}
	}
	return domain.BalanceSnapshot{
		Date:  date,
		Total: amounts[0],
		Added: amounts[1],
		Lost:  amounts[2],
	}, nil
}
