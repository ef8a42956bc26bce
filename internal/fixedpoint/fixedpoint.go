// Package fixedpoint converts between human decimal strings and integer
// base units at an arbitrary token decimal count.
//
// Every value that can reach a financial split or a contract argument is
// carried as a *big.Int. Parsing goes through shopspring/decimal, whose
// mantissa is itself a big.Int, so no base-10 fraction is ever rounded
// through float64.
package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmpty is returned for empty or whitespace-only input. Callers use it
	// to tell "not yet entered" apart from an explicit zero.
	ErrEmpty = errors.New("fixedpoint: empty amount")

	// ErrInvalidNumber is returned when text is not a non-negative decimal.
	ErrInvalidNumber = errors.New("fixedpoint: invalid number")

	// ErrDivisionByZero is returned when a required divisor is zero.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")

	// ErrOverflow is returned when a value does not fit the target width.
	ErrOverflow = errors.New("fixedpoint: value overflows")
)

const (
	// ReferenceDecimals is the 18-decimal scale prices are quoted at.
	ReferenceDecimals uint8 = 18

	// DefaultDisplayDecimals caps the fractional digits shown by Format.
	DefaultDisplayDecimals = 6
)

// numberRegex accepts plain non-negative decimals: "5", "5.", ".5", "0.50".
// Signs, exponents and separators are rejected before decimal parsing.
var numberRegex = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

// ParseDecimal validates text as a non-negative plain decimal and returns it
// as an exact decimal.
func ParseDecimal(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	if !numberRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return v, nil
}

// ParseAmount parses a decimal string into an integer scaled by 10^decimals.
// Fractional digits beyond decimals are truncated, never rounded.
//
//	ParseAmount("100.5", 18) → 100500000000000000000
func ParseAmount(text string, decimals uint8) (Amount, error) {
	v, err := ParseDecimal(text)
	if err != nil {
		return Amount{}, err
	}
	return Amount{
		Value:    v.Shift(int32(decimals)).Truncate(0).BigInt(),
		Decimals: decimals,
	}, nil
}

// FormatAmount renders an integer amount as a human decimal string. Trailing
// zeros and a bare decimal point are trimmed. At most maxDisplayDecimals
// fractional digits are shown, truncated; a negative cap shows all of them.
func FormatAmount(amount *big.Int, decimals uint8, maxDisplayDecimals int) string {
	if amount == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Set(amount)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}
	if decimals == 0 {
		return sign + abs.String()
	}

	whole, frac := new(big.Int).QuoRem(abs, Pow10(decimals), new(big.Int))
	fracStr := frac.String()
	fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	if maxDisplayDecimals >= 0 && len(fracStr) > maxDisplayDecimals {
		fracStr = fracStr[:maxDisplayDecimals]
	}
	fracStr = strings.TrimRight(fracStr, "0")

	if fracStr == "" {
		if whole.Sign() == 0 {
			return "0"
		}
		return sign + whole.String()
	}
	return sign + whole.String() + "." + fracStr
}

// Renormalize rescales amount from one decimal count to another. Scaling
// down floors, so a downscale followed by an upscale may lose value but never
// gains any.
func Renormalize(amount *big.Int, from, to uint8) *big.Int {
	switch {
	case from == to:
		return new(big.Int).Set(amount)
	case to > from:
		return new(big.Int).Mul(amount, Pow10(to-from))
	default:
		return new(big.Int).Div(amount, Pow10(from-to))
	}
}

// Pow10 returns 10^n.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// MulDiv computes floor(x * y / denominator) at full precision.
func MulDiv(x, y, denominator *big.Int) (*big.Int, error) {
	if denominator == nil || denominator.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	prod := new(big.Int).Mul(x, y)
	return prod.Div(prod, denominator), nil
}
