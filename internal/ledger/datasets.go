package ledger

// Dataset names one append-only CSV file owned by the store.
type Dataset string

const (
	// DatasetCreditCard holds categorized credit-card purchases.
	DatasetCreditCard Dataset = "credit_card"
	// DatasetWithdrawals holds categorized bank account withdrawals.
	DatasetWithdrawals Dataset = "withdrawals"
	// DatasetDeposits holds categorized bank account deposits.
	DatasetDeposits Dataset = "deposits"
	// DatasetTotals holds one balance snapshot per statement period.
	DatasetTotals Dataset = "totals"
	// DatasetInvestments holds point-in-time investment values; the
	// Category column names the instrument.
	DatasetInvestments Dataset = "investments"
)

// Filename returns the on-disk file name for the dataset.
func (d Dataset) Filename() string {
	return string(d) + ".csv"
}

// header returns the CSV header row the dataset file must carry.
// The credit-card ledger historically calls its amount column Debit;
// the formats round-trip exactly, so the difference is preserved.
func (d Dataset) header() []string {
	switch d {
	case DatasetCreditCard:
		return []string{"Date", "Debit", "Category"}
	case DatasetTotals:
		return []string{"Date", "Total", "Added", "Lost"}
	default:
		return []string{"Date", "Amount", "Category"}
	}
}
