package fixedpoint

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Amount is an integer base-unit quantity together with the decimal count it
// is scaled by. Amounts are values: operations return new Amounts and never
// modify Value in place.
type Amount struct {
	Value    *big.Int
	Decimals uint8
}

// NewAmount wraps a copy of value at the given decimal count.
func NewAmount(value *big.Int, decimals uint8) Amount {
	if value == nil {
		return Zero(decimals)
	}
	return Amount{Value: new(big.Int).Set(value), Decimals: decimals}
}

// Zero returns a zero amount at the given decimal count.
func Zero(decimals uint8) Amount {
	return Amount{Value: new(big.Int), Decimals: decimals}
}

// IsZero reports whether the amount is zero or unset.
func (a Amount) IsZero() bool {
	return a.Value == nil || a.Value.Sign() == 0
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	if a.Value == nil {
		return 0
	}
	return a.Value.Sign()
}

// To renormalizes the amount to another decimal count.
func (a Amount) To(decimals uint8) Amount {
	return Amount{Value: Renormalize(a.big(), a.Decimals, decimals), Decimals: decimals}
}

// Format renders the amount with at most maxDisplayDecimals fractional digits.
func (a Amount) Format(maxDisplayDecimals int) string {
	return FormatAmount(a.Value, a.Decimals, maxDisplayDecimals)
}

// String renders the amount with DefaultDisplayDecimals.
func (a Amount) String() string {
	return a.Format(DefaultDisplayDecimals)
}

// Uint256 returns the amount as a 256-bit word, the width contract calls
// take. Negative values and values above 2^256-1 are rejected.
func (a Amount) Uint256() (*uint256.Int, error) {
	v := a.big()
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrInvalidNumber, v)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %s does not fit in 256 bits", ErrOverflow, v)
	}
	return out, nil
}

func (a Amount) big() *big.Int {
	if a.Value == nil {
		return new(big.Int)
	}
	return a.Value
}

type amountJSON struct {
	Value     string `json:"value"`
	Decimals  uint8  `json:"decimals"`
	Formatted string `json:"formatted,omitempty"`
}

// MarshalJSON encodes the base-unit value as a string so JavaScript clients
// do not lose precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(amountJSON{
		Value:     a.big().String(),
		Decimals:  a.Decimals,
		Formatted: a.String(),
	})
}

// UnmarshalJSON decodes {"value": "<base units>", "decimals": N}.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, ok := new(big.Int).SetString(raw.Value, 10)
	if !ok || v.Sign() < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidNumber, raw.Value)
	}
	a.Value = v
	a.Decimals = raw.Decimals
	return nil
}
