package statement

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/category"
	"github.com/dvloznov/pocketledger/internal/domain"
)

func testRules(t *testing.T) *category.Engine {
	t.Helper()
	eng, err := category.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	return eng
}

func janPeriod(t *testing.T) domain.Period {
	t.Helper()
	return domain.Period{
		Start: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseBankCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Withdrawals,Deposits,Balance,Category",
		`01/08/2024,LEIDOS INC PAYROLL,,"$3,214.55",5000.00,Income`,
		"01/10/2024,SHEFFIELD COURT ACH PMT,1850.00,,3150.00,Housing",
		"01/15/2024,GIANT FOOD #2341,84.12,,3065.88,Food",
		"01/02/2024,OUT OF PERIOD PURCHASE,10.00,,3055.88,Misc",
		"01/20/2024,PENDING HOLD,,,3055.88,",
	}, "\n")

	deposits, withdrawals, err := ParseBankCSV(strings.NewReader(input), testRules(t), janPeriod(t))
	if err != nil {
		t.Fatalf("ParseBankCSV failed: %v", err)
	}

	if len(deposits) != 1 {
		t.Fatalf("Expected 1 deposit, got %d", len(deposits))
	}
	if deposits[0].Category != domain.CategoryPaycheck {
		t.Errorf("Deposit category = %q, want %q", deposits[0].Category, domain.CategoryPaycheck)
	}
	if want := decimal.RequireFromString("3214.55"); !deposits[0].Amount.Equal(want) {
		t.Errorf("Deposit amount = %s, want %s", deposits[0].Amount, want)
	}

	if len(withdrawals) != 2 {
		t.Fatalf("Expected 2 withdrawals, got %d", len(withdrawals))
	}
	if withdrawals[0].Category != domain.CategoryRent {
		t.Errorf("Withdrawal 0 category = %q, want %q", withdrawals[0].Category, domain.CategoryRent)
	}
	if withdrawals[1].Category != domain.CategoryGroceries {
		t.Errorf("Withdrawal 1 category = %q, want %q", withdrawals[1].Category, domain.CategoryGroceries)
	}
}

func TestParseBankCSV_SortedByDate(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Withdrawals,Deposits",
		"01/20/2024,LATER,5.00,",
		"01/08/2024,EARLIER,5.00,",
	}, "\n")

	_, withdrawals, err := ParseBankCSV(strings.NewReader(input), testRules(t), janPeriod(t))
	if err != nil {
		t.Fatalf("ParseBankCSV failed: %v", err)
	}
	if len(withdrawals) != 2 {
		t.Fatalf("Expected 2 withdrawals, got %d", len(withdrawals))
	}
	if !withdrawals[0].Date.Before(withdrawals[1].Date) {
		t.Error("Expected withdrawals sorted by date ascending")
	}
}

func TestParseBankCSV_BothAmountsSet(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Withdrawals,Deposits",
		"01/08/2024,IMPOSSIBLE ROW,5.00,5.00",
	}, "\n")

	_, _, err := ParseBankCSV(strings.NewReader(input), testRules(t), janPeriod(t))
	if !errors.Is(err, domain.ErrUnparseableStatement) {
		t.Errorf("Expected ErrUnparseableStatement, got %v", err)
	}
}

func TestParseBankCSV_MalformedAmount(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Withdrawals,Deposits",
		"01/08/2024,BAD AMOUNT,12x.00,",
	}, "\n")

	_, _, err := ParseBankCSV(strings.NewReader(input), testRules(t), janPeriod(t))
	var malformed *domain.MalformedAmountError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedAmountError, got %v", err)
	}
	if malformed.Field != "Withdrawals" {
		t.Errorf("Field = %q, want Withdrawals", malformed.Field)
	}
}

func TestParseBankCSV_MissingColumn(t *testing.T) {
	input := "Date,Description,Amount\n01/08/2024,X,5.00"
	_, _, err := ParseBankCSV(strings.NewReader(input), testRules(t), janPeriod(t))
	if !errors.Is(err, domain.ErrUnparseableStatement) {
		t.Errorf("Expected ErrUnparseableStatement, got %v", err)
	}
}

func TestParseBankCSV_EmptyFile(t *testing.T) {
	_, _, err := ParseBankCSV(strings.NewReader(""), testRules(t), janPeriod(t))
	if !errors.Is(err, domain.ErrUnparseableStatement) {
		t.Errorf("Expected ErrUnparseableStatement, got %v", err)
	}
}

func TestParseCreditCardExport(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Date,Posted Date,Card No.,Description,Category,Debit,Credit",
		"2024-01-12,2024-01-13,1234,WHOLEFDS MKT 10235,Dining,56.80,",
		"2024-01-15,2024-01-16,1234,NETFLIX.COM,Entertainment,15.49,",
		"2024-01-18,2024-01-19,1234,PAYMENT RECEIVED,,,150.00",
		"2024-01-20,2024-01-21,1234,MYSTERY SHOP,,12.00,",
	}, "\n")

	recs, err := ParseCreditCardExport(strings.NewReader(input), testRules(t))
	if err != nil {
		t.Fatalf("ParseCreditCardExport failed: %v", err)
	}

	if len(recs) != 3 {
		t.Fatalf("Expected 3 purchases, got %d", len(recs))
	}

	// Grocery rule overrides the issuer's own category.
	if recs[0].Category != domain.CategoryGroceries {
		t.Errorf("Whole Foods category = %q, want %q", recs[0].Category, domain.CategoryGroceries)
	}
	// Issuer category kept when no rule matches.
	if recs[1].Category != "Entertainment" {
		t.Errorf("Netflix category = %q, want Entertainment", recs[1].Category)
	}
	// Empty issuer category falls back to Misc.
	if recs[2].Category != domain.CategoryMisc {
		t.Errorf("Mystery shop category = %q, want %q", recs[2].Category, domain.CategoryMisc)
	}
}

func TestParseCreditCardExport_SkipsEmptyDebit(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Date,Description,Debit,Credit",
		"2024-01-18,PAYMENT RECEIVED,,150.00",
		"2024-01-19,COFFEE,4.50,",
	}, "\n")

	recs, err := ParseCreditCardExport(strings.NewReader(input), testRules(t))
	if err != nil {
		t.Fatalf("ParseCreditCardExport failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 purchase, got %d", len(recs))
	}
}

func TestParseCreditCardExport_MalformedDebit(t *testing.T) {
	input := strings.Join([]string{
		"Transaction Date,Description,Debit",
		"2024-01-19,COFFEE,4.5.0",
	}, "\n")

	_, err := ParseCreditCardExport(strings.NewReader(input), testRules(t))
	var malformed *domain.MalformedAmountError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedAmountError, got %v", err)
	}
	if malformed.Field != "Debit" {
		t.Errorf("Field = %q, want Debit", malformed.Field)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "12.34", want: "12.34"},
		{name: "currency symbol", raw: "$12.34", want: "12.34"},
		{name: "thousands separators", raw: "1,234,567.89", want: "1234567.89"},
		{name: "padded", raw: "  45.00 ", want: "45"},
		{name: "garbage", raw: "12x.00", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount("Debit", tt.raw)
			if tt.wantErr {
				var malformed *domain.MalformedAmountError
				if !errors.As(err, &malformed) {
					t.Errorf("Expected MalformedAmountError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAmount failed: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("parseAmount(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}
