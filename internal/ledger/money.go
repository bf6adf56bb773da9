package ledger

import "github.com/shopspring/decimal"

// Cent precision used for every rounding step in the engine.
const centPlaces = 2

var (
	// ZeroEpsilon is the magnitude below which a balance counts as settled.
	ZeroEpsilon = decimal.RequireFromString("0.001")

	// OneCent is the smallest transfer the simplifier will emit.
	OneCent = decimal.New(1, -centPlaces)
)

// RoundCents rounds d to two decimal places (half away from zero).
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(centPlaces)
}

// IsSettled reports whether d is within ZeroEpsilon of zero.
func IsSettled(d decimal.Decimal) bool {
	return d.Abs().LessThan(ZeroEpsilon)
}

// EqualShares divides amount into n shares that sum exactly to amount.
//
// Each share is amount/n floored to the cent; the rounding remainder goes to
// the first share:
//
//	EqualShares(10.00, 3) = [3.34, 3.33, 3.33]
//
// Returns nil when n <= 0.
func EqualShares(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	perPerson := amount.Div(count).RoundFloor(centPlaces)
	remainder := amount.Sub(perPerson.Mul(count)).Round(centPlaces)

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = perPerson
	}
	shares[0] = perPerson.Add(remainder)
	return shares
}
