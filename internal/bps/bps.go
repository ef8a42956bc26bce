// Package bps represents percentages and fee rates as integer basis points
// over a fixed denominator of 10,000 (1 bp = 0.01%).
package bps

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

// Denominator is the basis-point scale: 10,000 bp = 100%.
const Denominator = 10_000

// ErrOutOfRange is returned when a rate falls outside its allowed bounds.
var ErrOutOfRange = errors.New("bps: rate out of range")

// Rate is an integer number of basis points.
type Rate uint32

// ParsePercentage parses a human percentage such as "80" or "80.5" into
// basis points, truncating beyond two fractional digits: "80.5" → 8050.
func ParsePercentage(text string) (Rate, error) {
	a, err := fixedpoint.ParseAmount(text, 2)
	if err != nil {
		return 0, err
	}
	if !a.Value.IsUint64() || a.Value.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: percentage %q too large", fixedpoint.ErrInvalidNumber, text)
	}
	return Rate(a.Value.Uint64()), nil
}

// ApplyRate computes floor(amount * rate / 10,000).
func ApplyRate(amount *big.Int, rate Rate) *big.Int {
	out, _ := ApplyRateOver(amount, uint64(rate), Denominator)
	return out
}

// ApplyRateOver computes floor(amount * rate / denominator). The product is
// taken before the division and at full precision.
func ApplyRateOver(amount *big.Int, rate, denominator uint64) (*big.Int, error) {
	return fixedpoint.MulDiv(amount, new(big.Int).SetUint64(rate), new(big.Int).SetUint64(denominator))
}

// Valid reports whether the rate is within 0..Denominator.
func (r Rate) Valid() bool {
	return r <= Denominator
}

// CheckRange returns ErrOutOfRange unless lo <= r <= hi.
func CheckRange(r, lo, hi Rate) error {
	if r < lo || r > hi {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrOutOfRange, r, lo, hi)
	}
	return nil
}

// Percent renders the rate as a percentage number without the sign: 8050 → "80.5".
func (r Rate) Percent() string {
	return fixedpoint.FormatAmount(big.NewInt(int64(r)), 2, 2)
}

func (r Rate) String() string {
	return r.Percent() + "%"
}
