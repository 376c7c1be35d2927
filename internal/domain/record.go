package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical date layout used on every persisted dataset.
const DateFormat = "2006-01-02"

// StatementDateFormat is the layout banks use inside statement files.
const StatementDateFormat = "01/02/2006"

// Direction tells whether a transaction moved money out of or into the account.
type Direction string

const (
	DirectionWithdrawal Direction = "withdrawal"
	DirectionDeposit    Direction = "deposit"
)

// Fixed categories produced by the rule table. The taxonomy is open-ended:
// new categories appear only by extending the rules, never inferred.
const (
	CategoryRent       = "Rent"
	CategoryCreditCard = "Credit Card"
	CategoryTuition    = "Tuition"
	CategoryTransfer   = "Transfer"
	CategoryPaycheck   = "Paycheck"
	CategoryGroceries  = "Groceries"
	CategoryMisc       = "Misc"
)

// Record is one normalized transaction as stored in a ledger. Amount is
// always positive; the owning dataset decides whether it is a withdrawal
// or a deposit. For the investments dataset Category names the instrument.
type Record struct {
	Date     time.Time
	Amount   decimal.Decimal
	Category string
}

// Validate checks the storage invariants: positive amount, real date,
// non-empty category.
func (r Record) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("record date is zero")
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("record amount %s is not positive", r.Amount)
	}
	if r.Category == "" {
		return fmt.Errorf("record category is empty")
	}
	return nil
}

// BalanceSnapshot is one row of the balance-snapshot dataset: the account
// state at the end of a statement period. The latest row by date is
// authoritative for "current balance".
type BalanceSnapshot struct {
	Date  time.Time       // statement period end
	Total decimal.Decimal // ending balance
	Added decimal.Decimal // total deposits over the period
	Lost  decimal.Decimal // total withdrawals over the period
}

// Validate checks the snapshot invariants. Totals may legitimately be
// negative (overdraft), so only the date is constrained.
func (s BalanceSnapshot) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("snapshot date is zero")
	}
	return nil
}

// Period is an inclusive statement date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the period, inclusive on both ends.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}
