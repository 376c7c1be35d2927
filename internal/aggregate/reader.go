package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
	"github.com/dvloznov/pocketledger/internal/ledger"
)

// Instruments whose latest entry counts toward total assets. Anything
// else in the investments dataset is ignored.
var recognizedInstruments = map[string]bool{
	"etrade":     true,
	"leidos":     true,
	"retirement": true,
	"cambridge":  true,
}

// Source selects which spending ledger a breakdown reads.
type Source string

const (
	SourceBank       Source = "bank"
	SourceCreditCard Source = "credit"
)

func (s Source) dataset() (ledger.Dataset, error) {
	switch s {
	case SourceBank:
		return ledger.DatasetWithdrawals, nil
	case SourceCreditCard:
		return ledger.DatasetCreditCard, nil
	default:
		return "", fmt.Errorf("unknown spending source %q", s)
	}
}

// Aggregator answers aggregate queries by re-loading datasets from the
// store on every call. No state is held between invocations, so an
// ingestion is visible to the very next query.
type Aggregator struct {
	store *ledger.Store
}

// New creates an aggregator over the store.
func New(store *ledger.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Spending aggregates the bank withdrawals ledger over a lookback window
// of nMonths (zero meaning the latest calendar month in the data).
func (a *Aggregator) Spending(cumulative bool, nMonths int) (Spending, error) {
	recs, err := a.store.ReadTransactions(ledger.DatasetWithdrawals)
	if err != nil {
		return Spending{}, err
	}
	return AggregateSpending(LookbackWindow(recs, nMonths), cumulative), nil
}

// Income aggregates paychecks from the deposits ledger over a lookback
// window.
func (a *Aggregator) Income(cumulative bool, nMonths int) (decimal.Decimal, error) {
	recs, err := a.store.ReadTransactions(ledger.DatasetDeposits)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return AggregateIncome(LookbackWindow(recs, nMonths), cumulative)
}

// NetSavings aggregates deposits minus withdrawals over a lookback
// window applied to each ledger independently.
func (a *Aggregator) NetSavings(cumulative bool, nMonths int) (decimal.Decimal, error) {
	deposits, err := a.store.ReadTransactions(ledger.DatasetDeposits)
	if err != nil {
		return decimal.Decimal{}, err
	}
	withdrawals, err := a.store.ReadTransactions(ledger.DatasetWithdrawals)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return AggregateNetSavings(
		LookbackWindow(deposits, nMonths),
		LookbackWindow(withdrawals, nMonths),
		cumulative,
	), nil
}

// SpendingBreakdown selects a date range from the chosen spending ledger
// and sums it per category, returning the range label alongside.
func (a *Aggregator) SpendingBreakdown(src Source, q RangeQuery) (map[string]decimal.Decimal, string, error) {
	ds, err := src.dataset()
	if err != nil {
		return nil, "", err
	}
	recs, err := a.store.ReadTransactions(ds)
	if err != nil {
		return nil, "", err
	}
	subset, label := SelectDateRange(recs, q)
	return Breakdown(subset), label, nil
}

// TotalAssets sums the most-recent entry of each recognized investment
// instrument with the ending balance of the most recent balance
// snapshot. Older entries for an instrument are superseded, not added.
func (a *Aggregator) TotalAssets() (decimal.Decimal, error) {
	investments, err := a.store.ReadTransactions(ledger.DatasetInvestments)
	if err != nil {
		return decimal.Decimal{}, err
	}
	snaps, err := a.store.ReadSnapshots()
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(snaps) == 0 {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", ledger.DatasetTotals, domain.ErrDatasetMissing)
	}

	latest := make(map[string]domain.Record)
	for _, r := range investments {
		if !recognizedInstruments[r.Category] {
			continue
		}
		if prev, ok := latest[r.Category]; !ok || !r.Date.Before(prev.Date) {
			latest[r.Category] = r
		}
	}

	var total decimal.Decimal
	for _, r := range latest {
		total = total.Add(r.Amount)
	}

	current := snaps[0]
	for _, s := range snaps[1:] {
		if !s.Date.Before(current.Date) {
			current = s
		}
	}
	return total.Add(current.Total), nil
}

// InvestmentHistory returns every investment entry, for the dashboard's
// value-over-time chart.
func (a *Aggregator) InvestmentHistory() ([]domain.Record, error) {
	return a.store.ReadTransactions(ledger.DatasetInvestments)
}
