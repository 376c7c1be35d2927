// Package aggregate computes windowed financial aggregates over ledger
// datasets: spending by category, income, net savings, and total assets.
package aggregate

import (
	"fmt"
	"time"

	"github.com/dvloznov/pocketledger/internal/domain"
)

// RangeQuery selects a date range for aggregation. Fields form five
// mutually exclusive tiers, checked in order: start+end, start only,
// end only, year without month, and finally year/month defaulted from
// Now. Now exists so tests can pin the clock; zero means time.Now().
type RangeQuery struct {
	Start *time.Time
	End   *time.Time
	Year  int
	Month int
	Now   time.Time
}

// SelectDateRange filters recs by the query and returns the subset along
// with a human-readable label describing which tier applied.
func SelectDateRange(recs []domain.Record, q RangeQuery) ([]domain.Record, string) {
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch {
	case q.Start != nil && q.End != nil:
		label := fmt.Sprintf("%s to %s", q.Start.Format(domain.DateFormat), q.End.Format(domain.DateFormat))
		return filter(recs, func(d time.Time) bool {
			return !d.Before(*q.Start) && !d.After(*q.End)
		}), label
	case q.Start != nil:
		label := fmt.Sprintf("Everything After %s", q.Start.Format(domain.DateFormat))
		return filter(recs, func(d time.Time) bool { return !d.Before(*q.Start) }), label
	case q.End != nil:
		label := fmt.Sprintf("Everything Up to %s", q.End.Format(domain.DateFormat))
		return filter(recs, func(d time.Time) bool { return !d.After(*q.End) }), label
	case q.Year != 0 && q.Month == 0:
		return filter(recs, func(d time.Time) bool { return d.Year() == q.Year }), fmt.Sprintf("%d", q.Year)
	default:
		year, month := q.Year, q.Month
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
		label := fmt.Sprintf("%d-%d", year, month)
		return filter(recs, func(d time.Time) bool {
			return d.Year() == year && int(d.Month()) == month
		}), label
	}
}

// LookbackWindow returns the trailing subset of recs anchored at the
// latest date present in the data, not at today. With nMonths > 0 the
// window starts at the first of the latest date's month minus nMonths;
// otherwise only the latest date's calendar month is kept.
func LookbackWindow(recs []domain.Record, nMonths int) []domain.Record {
	if len(recs) == 0 {
		return nil
	}

	latest := recs[0].Date
	for _, r := range recs[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}

	if nMonths > 0 {
		start := time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, -nMonths, 0)
		return filter(recs, func(d time.Time) bool {
			return !d.Before(start) && !d.After(latest)
		})
	}

	return filter(recs, func(d time.Time) bool {
		return d.Year() == latest.Year() && d.Month() == latest.Month()
	})
}

func filter(recs []domain.Record, keep func(time.Time) bool) []domain.Record {
	var out []domain.Record
	for _, r := range recs {
		if keep(r.Date) {
			out = append(out, r)
		}
	}
	return out
}
