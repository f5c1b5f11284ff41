package domain

import "strconv"

// ExchangeRate is the fixed MZN-per-USD rate applied to every conversion.
// It is not fetched live.
const ExchangeRate = 64

// MZNToUSD converts an MZN amount to the USD decimal string stored alongside
// it, rounded to 2 decimals.
func MZNToUSD(mzn int64) string {
	return strconv.FormatFloat(float64(mzn)/ExchangeRate, 'f', 2, 64)
}
