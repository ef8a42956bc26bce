// Package duration converts human day and hour counts into the integer
// seconds used for vesting cliffs and liquidity lock periods.
package duration

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

const (
	SecondsPerHour = 3600
	SecondsPerDay  = 86400
)

// Seconds is a non-negative whole number of seconds.
type Seconds uint64

// Duration converts s to a time.Duration, saturating at the largest
// representable value.
func (s Seconds) Duration() time.Duration {
	if uint64(s) > uint64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s) * time.Second
}

// DaysToSeconds parses a non-negative decimal day count and truncates to
// whole seconds: floor(days * 86400). "0" is valid and means no cliff or
// no lock.
func DaysToSeconds(days string) (Seconds, error) {
	return toSeconds(days, SecondsPerDay)
}

// HoursToSeconds is DaysToSeconds for an hour count.
func HoursToSeconds(hours string) (Seconds, error) {
	return toSeconds(hours, SecondsPerHour)
}

func toSeconds(text string, unit int64) (Seconds, error) {
	v, err := fixedpoint.ParseDecimal(text)
	if err != nil {
		return 0, err
	}
	secs := v.Mul(decimal.NewFromInt(unit)).Truncate(0)
	if !secs.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: %s seconds", fixedpoint.ErrOverflow, secs)
	}
	return Seconds(secs.BigInt().Uint64()), nil
}

// SecondsToDays renders s as a day count for display, with at most
// maxDecimals fractional digits, truncated.
func SecondsToDays(s Seconds, maxDecimals int32) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(s)), 0).Div(decimal.NewFromInt(SecondsPerDay))
	return d.Truncate(maxDecimals).String()
}
