package helpers

import "github.com/shopspring/decimal"

// ParseAmount parses a written amount such as "0,99" or "1.50". Malformed
// text yields zero rather than an error: an unreadable amount is treated as
// no amount at all.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(NormalizeDecimal(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
