package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/domain"
)

// parseAmount converts a raw currency field ("$1,234.56") into a decimal.
// field names the source column for the error message.
func parseAmount(field, raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, &domain.MalformedAmountError{Field: field, Value: raw, Err: err}
	}
	return amount, nil
}
