package aggregate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
)

func TestAggregateSpending_Cumulative(t *testing.T) {
	subset := []domain.Record{
		rec(t, "2024-01-05", "1200", domain.CategoryRent),
		rec(t, "2024-02-05", "1200", domain.CategoryRent),
		rec(t, "2024-01-12", "600", domain.CategoryCreditCard),
		rec(t, "2024-01-20", "84.12", domain.CategoryMisc),
		rec(t, "2024-01-08", "3000", domain.CategoryPaycheck),
	}

	got := AggregateSpending(subset, true)

	if want := decimal.RequireFromString("2400"); !got.Rent.Equal(want) {
		t.Errorf("Rent = %s, want %s", got.Rent, want)
	}
	if want := decimal.RequireFromString("600"); !got.CreditCard.Equal(want) {
		t.Errorf("CreditCard = %s, want %s", got.CreditCard, want)
	}
	if want := decimal.RequireFromString("84.12"); !got.Misc.Equal(want) {
		t.Errorf("Misc = %s, want %s", got.Misc, want)
	}
}

func TestAggregateSpending_MonthlyAverage(t *testing.T) {
	// Rent appears in two of the three months covered by the data. The
	// average divides by the months rent actually appears in, not by
	// the span.
	subset := []domain.Record{
		rec(t, "2024-01-05", "1200", domain.CategoryRent),
		rec(t, "2024-03-05", "1300", domain.CategoryRent),
		rec(t, "2024-02-14", "50", domain.CategoryMisc),
	}

	got := AggregateSpending(subset, false)

	if want := decimal.RequireFromString("1250"); !got.Rent.Equal(want) {
		t.Errorf("Rent = %s, want %s (absent months excluded from the denominator)", got.Rent, want)
	}
	if want := decimal.RequireFromString("50"); !got.Misc.Equal(want) {
		t.Errorf("Misc = %s, want %s", got.Misc, want)
	}
}

func TestAggregateSpending_AbsentCategoryIsZero(t *testing.T) {
	subset := []domain.Record{rec(t, "2024-01-05", "10", domain.CategoryMisc)}
	got := AggregateSpending(subset, true)
	if !got.Rent.IsZero() || !got.CreditCard.IsZero() {
		t.Errorf("Expected zero for absent categories, got Rent=%s CreditCard=%s", got.Rent, got.CreditCard)
	}
}

func TestAggregateIncome(t *testing.T) {
	subset := []domain.Record{
		rec(t, "2024-01-08", "3000", domain.CategoryPaycheck),
		rec(t, "2024-01-22", "3000", domain.CategoryPaycheck),
		rec(t, "2024-02-08", "3100", domain.CategoryPaycheck),
		rec(t, "2024-01-15", "500", domain.CategoryTransfer),
	}

	t.Run("cumulative", func(t *testing.T) {
		got, err := AggregateIncome(subset, true)
		if err != nil {
			t.Fatalf("AggregateIncome failed: %v", err)
		}
		if want := decimal.RequireFromString("9100"); !got.Equal(want) {
			t.Errorf("Income = %s, want %s", got, want)
		}
	})

	t.Run("monthly average", func(t *testing.T) {
		got, err := AggregateIncome(subset, false)
		if err != nil {
			t.Fatalf("AggregateIncome failed: %v", err)
		}
		if want := decimal.RequireFromString("4550"); !got.Equal(want) {
			t.Errorf("Income = %s, want %s", got, want)
		}
	})

	t.Run("no paychecks", func(t *testing.T) {
		_, err := AggregateIncome([]domain.Record{
			rec(t, "2024-01-15", "500", domain.CategoryTransfer),
		}, true)
		if !errors.Is(err, domain.ErrNoPaycheckData) {
			t.Errorf("Expected ErrNoPaycheckData, got %v", err)
		}
	})
}

func TestAggregateNetSavings(t *testing.T) {
	deposits := []domain.Record{
		rec(t, "2024-01-08", "3000", domain.CategoryPaycheck),
		rec(t, "2024-01-15", "500", domain.CategoryTransfer),
	}
	withdrawals := []domain.Record{
		rec(t, "2024-01-05", "1200", domain.CategoryRent),
		rec(t, "2024-01-20", "300", domain.CategoryMisc),
	}

	// Transfers are not income: 3000 - 1500 = 1500.
	got := AggregateNetSavings(deposits, withdrawals, true)
	if want := decimal.RequireFromString("1500"); !got.Equal(want) {
		t.Errorf("NetSavings = %s, want %s", got, want)
	}
}

func TestAggregateNetSavings_CanBeNegative(t *testing.T) {
	deposits := []domain.Record{rec(t, "2024-01-08", "100", domain.CategoryPaycheck)}
	withdrawals := []domain.Record{rec(t, "2024-01-05", "250", domain.CategoryRent)}

	got := AggregateNetSavings(deposits, withdrawals, true)
	if want := decimal.RequireFromString("-150"); !got.Equal(want) {
		t.Errorf("NetSavings = %s, want %s", got, want)
	}
}

func TestBreakdown(t *testing.T) {
	subset := []domain.Record{
		rec(t, "2024-01-05", "1200", domain.CategoryRent),
		rec(t, "2024-01-12", "40", domain.CategoryGroceries),
		rec(t, "2024-01-19", "60", domain.CategoryGroceries),
	}

	got := Breakdown(subset)
	if len(got) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(got))
	}
	if want := decimal.RequireFromString("100"); !got[domain.CategoryGroceries].Equal(want) {
		t.Errorf("Groceries = %s, want %s", got[domain.CategoryGroceries], want)
	}
}
