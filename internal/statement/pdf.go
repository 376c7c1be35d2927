// Package statement extracts structured records from raw bank exports:
// the balance summary of a PDF statement and the transaction lines of
// bank and credit-card CSV files. The text-layout assumptions live in a
// handful of regular expressions so they stay unit-testable without any
// PDF decoding involved.
package statement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
)

var (
	// "For the period MM/DD/YYYY to MM/DD/YYYY"
	periodRe = regexp.MustCompile(`For the period (\d{2}/\d{2}/\d{4}) to (\d{2}/\d{2}/\d{4})`)

	// The balance summary block. The capture group holds the numeric
	// interior between the "Ending balance" column header and the
	// "Average monthly" line that follows the summary table.
	summaryRe = regexp.MustCompile(`Balance Summary[\s\S]*?Ending\s+balance([\s\S]*?)Average monthly`)
)

// ParsePDFStatement scans concatenated page texts for the statement period
// and the balance summary. The summary interior is whitespace-normalized
// into numeric tokens whose raw appearance order is lost, added, ending;
// they are re-ordered to (ending, added, lost) before storage. The
// snapshot is keyed by the period end date.
//
// Returns domain.ErrUnparseableStatement when either marker is missing
// from every page.
func ParsePDFStatement(pages []string) (domain.Period, domain.BalanceSnapshot, error) {
	var (
		period    domain.Period
		hasPeriod bool
		tokens    []decimal.Decimal
	)

	for _, page := range pages {
		if m := periodRe.FindStringSubmatch(page); m != nil && !hasPeriod {
			start, err := time.Parse(domain.StatementDateFormat, m[1])
			if err != nil {
				return domain.Period{}, domain.BalanceSnapshot{}, fmt.Errorf("parsing period start %q: %w", m[1], err)
			}
			end, err := time.Parse(domain.StatementDateFormat, m[2])
			if err != nil {
				return domain.Period{}, domain.BalanceSnapshot{}, fmt.Errorf("parsing period end %q: %w", m[2], err)
			}
			period = domain.Period{Start: start, End: end}
			hasPeriod = true
		}

		if m := summaryRe.FindStringSubmatch(page); m != nil && tokens == nil {
			tokens = numericTokens(m[1])
		}
	}

	if !hasPeriod {
		return domain.Period{}, domain.BalanceSnapshot{}, fmt.Errorf("no statement period line: %w", domain.ErrUnparseableStatement)
	}
	if len(tokens) < 3 {
		return domain.Period{}, domain.BalanceSnapshot{}, fmt.Errorf("no balance summary block: %w", domain.ErrUnparseableStatement)
	}

	// Reverse appearance order of the last three tokens.
	last := tokens[len(tokens)-3:]
	snap := domain.BalanceSnapshot{
		Date:  period.End,
		Total: last[2],
		Added: last[1],
		Lost:  last[0],
	}
	return period, snap, nil
}

// numericTokens normalizes whitespace in the summary interior and keeps
// the tokens that parse as decimals once thousands separators are gone.
func numericTokens(interior string) []decimal.Decimal {
	cleaned := strings.ReplaceAll(interior, ",", "")
	var out []decimal.Decimal
	for _, tok := range strings.Fields(cleaned) {
		tok = strings.TrimPrefix(tok, "$")
		d, err := decimal.NewFromString(tok)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}
