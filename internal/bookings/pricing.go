package bookings

import (
	"github.com/shopspring/decimal"
)

// AppliedOffer is the narrow view of a discount the calculator needs (to
// avoid a circular dependency on the offers package).
type AppliedOffer struct {
	DiscountPercentage decimal.Decimal
	Valid              bool
}

var oneHundred = decimal.NewFromInt(100)

// Price computes the advance due for a hold: per-guest rate times guest
// count, less the offer's percentage when the offer is valid at pricing
// time. All arithmetic is exact decimal; the result is rounded half-up to
// two places only at the end, and never goes below zero.
func Price(ratePerGuest decimal.Decimal, guests int, offer *AppliedOffer) decimal.Decimal {
	total := ratePerGuest.Mul(decimal.NewFromInt(int64(guests)))

	if offer != nil && offer.Valid {
		discount := total.Mul(offer.DiscountPercentage.Div(oneHundred))
		total = total.Sub(discount)
	}

	total = total.Round(2)
	if total.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return total
}
