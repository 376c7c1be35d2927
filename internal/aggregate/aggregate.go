package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
)

// Spending holds totals for the three categories the dashboard reports.
// Categories absent from the window contribute zero rather than being
// omitted.
type Spending struct {
	Rent       decimal.Decimal
	CreditCard decimal.Decimal
	Misc       decimal.Decimal
}

// AggregateSpending computes per-category totals over the subset. In
// cumulative mode each value is the plain sum. Otherwise it is the mean
// of per-calendar-month sums; months in which the category has no
// transactions are excluded from the denominator (see DESIGN.md).
func AggregateSpending(subset []domain.Record, cumulative bool) Spending {
	return Spending{
		Rent:       aggregateCategory(subset, domain.CategoryRent, cumulative),
		CreditCard: aggregateCategory(subset, domain.CategoryCreditCard, cumulative),
		Misc:       aggregateCategory(subset, domain.CategoryMisc, cumulative),
	}
}

// AggregateIncome aggregates the Paycheck rows of the subset with the
// same sum-vs-monthly-average rule. A window without a single paycheck
// is a domain error, not a zero.
func AggregateIncome(subset []domain.Record, cumulative bool) (decimal.Decimal, error) {
	paychecks := byCategory(subset, domain.CategoryPaycheck)
	if len(paychecks) == 0 {
		return decimal.Decimal{}, domain.ErrNoPaycheckData
	}
	if cumulative {
		return sum(paychecks), nil
	}
	return monthlyAverage(paychecks), nil
}

// AggregateNetSavings returns aggregated deposits minus aggregated
// withdrawals. Transfer rows are removed from the deposits first:
// moving money between accounts is not income. The same cumulation rule
// applies to both sides.
func AggregateNetSavings(deposits, withdrawals []domain.Record, cumulative bool) decimal.Decimal {
	var kept []domain.Record
	for _, r := range deposits {
		if r.Category != domain.CategoryTransfer {
			kept = append(kept, r)
		}
	}

	if cumulative {
		return sum(kept).Sub(sum(withdrawals))
	}
	return monthlyAverage(kept).Sub(monthlyAverage(withdrawals))
}

// Breakdown sums the subset per category, for the spending chart.
func Breakdown(subset []domain.Record) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range subset {
		out[r.Category] = out[r.Category].Add(r.Amount)
	}
	return out
}

func aggregateCategory(subset []domain.Record, cat string, cumulative bool) decimal.Decimal {
	recs := byCategory(subset, cat)
	if cumulative {
		return sum(recs)
	}
	return monthlyAverage(recs)
}

func byCategory(recs []domain.Record, cat string) []domain.Record {
	var out []domain.Record
	for _, r := range recs {
		if r.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

func sum(recs []domain.Record) decimal.Decimal {
	var total decimal.Decimal
	for _, r := range recs {
		total = total.Add(r.Amount)
	}
	return total
}

type monthKey struct {
	year  int
	month time.Month
}

// monthlyAverage is the mean of per-calendar-month sums across the months
// actually present in recs. Zero when recs is empty.
func monthlyAverage(recs []domain.Record) decimal.Decimal {
	if len(recs) == 0 {
		return decimal.Decimal{}
	}
	months := make(map[monthKey]struct{})
	var total decimal.Decimal
	for _, r := range recs {
		months[monthKey{r.Date.Year(), r.Date.Month()}] = struct{}{}
		total = total.Add(r.Amount)
	}
	return total.Div(decimal.NewFromInt(int64(len(months))))
}
