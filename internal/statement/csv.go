package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/pocketledger/internal/category"
	"github.com/dvloznov/pocketledger/internal/domain"
)

// header index lookup shared by both CSV layouts. Column names are
// matched case-insensitively; banks are not consistent about casing.
func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing %q column: %w", name, domain.ErrUnparseableStatement)
}

func optionalColumnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

// ParseBankCSV reads a bank account export (columns Date, Description,
// Withdrawals, Deposits, Balance, Category) and splits it into deposit
// and withdrawal records. Every row is re-categorized from its
// description; the bank's own Category column is ignored. Rows dated
// outside the statement period are discarded. A row carrying both a
// withdrawal and a deposit amount violates the export format and aborts
// the parse, as does any amount that fails to parse.
func ParseBankCSV(r io.Reader, rules *category.Engine, period domain.Period) (deposits, withdrawals []domain.Record, err error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, nil, err
	}

	dateCol, err := columnIndex(header, "Date")
	if err != nil {
		return nil, nil, err
	}
	descCol, err := columnIndex(header, "Description")
	if err != nil {
		return nil, nil, err
	}
	withdrawalCol, err := columnIndex(header, "Withdrawals")
	if err != nil {
		return nil, nil, err
	}
	depositCol, err := columnIndex(header, "Deposits")
	if err != nil {
		return nil, nil, err
	}

	for i, row := range rows {
		date, err := time.Parse(domain.StatementDateFormat, strings.TrimSpace(row[dateCol]))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, row[dateCol], err)
		}

		cat := rules.Categorize(row[descCol])
		if !period.Contains(date) {
			continue
		}

		rawWithdrawal := strings.TrimSpace(row[withdrawalCol])
		rawDeposit := strings.TrimSpace(row[depositCol])
		switch {
		case rawWithdrawal != "" && rawDeposit != "":
			return nil, nil, fmt.Errorf("row %d has both a withdrawal and a deposit: %w", i+2, domain.ErrUnparseableStatement)
		case rawWithdrawal != "":
			amount, err := parseAmount("Withdrawals", rawWithdrawal)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			withdrawals = append(withdrawals, domain.Record{Date: date, Amount: amount, Category: cat})
		case rawDeposit != "":
			amount, err := parseAmount("Deposits", rawDeposit)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			deposits = append(deposits, domain.Record{Date: date, Amount: amount, Category: cat})
		}
	}

	sortByDate(deposits)
	sortByDate(withdrawals)
	return deposits, withdrawals, nil
}

// ParseCreditCardExport reads a credit-card export (columns Transaction
// Date, Posted Date, Card No., Description, Category, Debit, Credit).
// Rows without a debit amount are pending credits, not purchases, and
// are dropped. The card issuer's category is kept unless the description
// matches the grocery rule, which overrides it.
func ParseCreditCardExport(r io.Reader, rules *category.Engine) ([]domain.Record, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	dateCol, err := columnIndex(header, "Transaction Date")
	if err != nil {
		return nil, err
	}
	descCol, err := columnIndex(header, "Description")
	if err != nil {
		return nil, err
	}
	debitCol, err := columnIndex(header, "Debit")
	if err != nil {
		return nil, err
	}
	categoryCol := optionalColumnIndex(header, "Category")

	var recs []domain.Record
	for i, row := range rows {
		rawDebit := strings.TrimSpace(row[debitCol])
		if rawDebit == "" {
			continue
		}

		date, err := time.Parse(domain.DateFormat, strings.TrimSpace(row[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, row[dateCol], err)
		}
		amount, err := parseAmount("Debit", rawDebit)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		cat := ""
		if categoryCol >= 0 {
			cat = strings.TrimSpace(row[categoryCol])
		}
		if matched, ok := rules.Match(row[descCol]); ok && matched == domain.CategoryGroceries {
			cat = domain.CategoryGroceries
		}
		if cat == "" {
			cat = domain.CategoryMisc
		}

		recs = append(recs, domain.Record{Date: date, Amount: amount, Category: cat})
	}

	sortByDate(recs)
	return recs, nil
}

func readCSV(r io.Reader) (rows [][]string, header []string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty csv: %w", domain.ErrUnparseableStatement)
	}
	return all[1:], all[0], nil
}

func sortByDate(recs []domain.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date.Before(recs[j].Date)
	})
}
