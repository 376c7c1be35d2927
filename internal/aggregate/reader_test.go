package aggregate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
	"github.com/dvloznov/pocketledger/internal/ledger"
)

func newTestAggregator(t *testing.T) (*Aggregator, *ledger.Store) {
	t.Helper()
	store := ledger.NewStore(t.TempDir())
	return New(store), store
}

func TestAggregator_Spending(t *testing.T) {
	agg, store := newTestAggregator(t)

	if err := store.AppendTransactions(ledger.DatasetWithdrawals, []domain.Record{
		rec(t, "2024-01-05", "1200", domain.CategoryRent),
		rec(t, "2024-02-05", "1200", domain.CategoryRent),
		rec(t, "2024-02-10", "75", domain.CategoryMisc),
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}

	// Zero months: only the latest month (February) counts.
	got, err := agg.Spending(true, 0)
	if err != nil {
		t.Fatalf("Spending failed: %v", err)
	}
	if want := decimal.RequireFromString("1200"); !got.Rent.Equal(want) {
		t.Errorf("Rent = %s, want %s", got.Rent, want)
	}
	if want := decimal.RequireFromString("75"); !got.Misc.Equal(want) {
		t.Errorf("Misc = %s, want %s", got.Misc, want)
	}
}

func TestAggregator_MissingDataset(t *testing.T) {
	agg, _ := newTestAggregator(t)

	if _, err := agg.Spending(true, 0); !errors.Is(err, domain.ErrDatasetMissing) {
		t.Errorf("Expected ErrDatasetMissing, got %v", err)
	}
	if _, err := agg.Income(true, 0); !errors.Is(err, domain.ErrDatasetMissing) {
		t.Errorf("Expected ErrDatasetMissing, got %v", err)
	}
}

func TestAggregator_SpendingBreakdown(t *testing.T) {
	agg, store := newTestAggregator(t)

	if err := store.AppendTransactions(ledger.DatasetCreditCard, []domain.Record{
		rec(t, "2024-01-12", "56.80", domain.CategoryGroceries),
		rec(t, "2024-01-15", "15.49", "Entertainment"),
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}

	breakdown, label, err := agg.SpendingBreakdown(SourceCreditCard, RangeQuery{Year: 2024, Month: 1})
	if err != nil {
		t.Fatalf("SpendingBreakdown failed: %v", err)
	}
	if label != "2024-1" {
		t.Errorf("label = %q, want 2024-1", label)
	}
	if len(breakdown) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(breakdown))
	}
}

func TestAggregator_SpendingBreakdown_UnknownSource(t *testing.T) {
	agg, _ := newTestAggregator(t)
	if _, _, err := agg.SpendingBreakdown(Source("cash"), RangeQuery{}); err == nil {
		t.Error("Expected an error for an unknown source")
	}
}

func TestAggregator_TotalAssets(t *testing.T) {
	agg, store := newTestAggregator(t)

	if err := store.AppendTransactions(ledger.DatasetInvestments, []domain.Record{
		rec(t, "2024-01-31", "10000", "etrade"),
		rec(t, "2024-02-29", "10500", "etrade"), // supersedes the January entry
		rec(t, "2024-01-31", "42000", "retirement"),
		rec(t, "2024-01-31", "999", "beanie-babies"), // not a recognized instrument
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}

	if err := store.AppendSnapshots([]domain.BalanceSnapshot{
		{Date: day(t, "2024-01-31"), Total: decimal.RequireFromString("2000")},
		{Date: day(t, "2024-02-29"), Total: decimal.RequireFromString("2500")},
	}); err != nil {
		t.Fatalf("AppendSnapshots failed: %v", err)
	}

	got, err := agg.TotalAssets()
	if err != nil {
		t.Fatalf("TotalAssets failed: %v", err)
	}

	// 10500 (latest etrade) + 42000 (retirement) + 2500 (latest snapshot).
	if want := decimal.RequireFromString("55000"); !got.Equal(want) {
		t.Errorf("TotalAssets = %s, want %s", got, want)
	}
}

func TestAggregator_TotalAssets_NoSnapshots(t *testing.T) {
	agg, store := newTestAggregator(t)

	if err := store.AppendTransactions(ledger.DatasetInvestments, []domain.Record{
		rec(t, "2024-01-31", "10000", "etrade"),
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}

	if _, err := agg.TotalAssets(); !errors.Is(err, domain.ErrDatasetMissing) {
		t.Errorf("Expected ErrDatasetMissing without snapshots, got %v", err)
	}
}

func TestAggregator_TotalAssets_SameDayEntryWins(t *testing.T) {
	agg, store := newTestAggregator(t)

	// Two same-day entries for one instrument: the later row wins.
	if err := store.AppendTransactions(ledger.DatasetInvestments, []domain.Record{
		rec(t, "2024-01-31", "100", "cambridge"),
		rec(t, "2024-01-31", "150", "cambridge"),
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}
	if err := store.AppendSnapshots([]domain.BalanceSnapshot{
		{Date: day(t, "2024-01-31"), Total: decimal.Zero},
	}); err != nil {
		t.Fatalf("AppendSnapshots failed: %v", err)
	}

	got, err := agg.TotalAssets()
	if err != nil {
		t.Fatalf("TotalAssets failed: %v", err)
	}
	if want := decimal.RequireFromString("150"); !got.Equal(want) {
		t.Errorf("TotalAssets = %s, want %s", got, want)
	}
}

func TestAggregator_NetSavings(t *testing.T) {
	agg, store := newTestAggregator(t)

	if err := store.AppendTransactions(ledger.DatasetDeposits, []domain.Record{
		rec(t, "2024-01-08", "3000", domain.CategoryPaycheck),
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}
	if err := store.AppendTransactions(ledger.DatasetWithdrawals, []domain.Record{
		rec(t, "2024-01-05", "1200", domain.CategoryRent),
	}); err != nil {
		t.Fatalf("AppendTransactions failed: %v", err)
	}

	got, err := agg.NetSavings(true, 0)
	if err != nil {
		t.Fatalf("NetSavings failed: %v", err)
	}
	if want := decimal.RequireFromString("1800"); !got.Equal(want) {
		t.Errorf("NetSavings = %s, want %s", got, want)
	}
}
