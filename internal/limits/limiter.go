// Package limits enforces per-wallet contribution bounds and the aggregate
// hard cap of a token sale.
package limits

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidAmount is returned for a zero or negative contribution.
	ErrInvalidAmount = errors.New("limits: contribution must be positive")

	// ErrBelowMinimum is returned when a single contribution is smaller than
	// the sale's minimum.
	ErrBelowMinimum = errors.New("limits: contribution below minimum")

	// ErrAboveMaximum is returned when a wallet's running total would exceed
	// the per-wallet maximum.
	ErrAboveMaximum = errors.New("limits: wallet contribution above maximum")

	// ErrHardCapExceeded is returned when the contribution would push the
	// total raised past the hard cap.
	ErrHardCapExceeded = errors.New("limits: hard cap exceeded")
)

// ContributionLimiter checks contributions against a sale's limits. All
// amounts are contribution-token base units; a nil limit is not enforced.
type ContributionLimiter struct {
	// MinContribution is the smallest single contribution accepted.
	MinContribution *big.Int

	// MaxContribution is the largest total one wallet may contribute.
	MaxContribution *big.Int

	// HardCap is the most the sale may raise across all wallets.
	HardCap *big.Int
}

// NewContributionLimiter creates a limiter. Zero limits are treated as unset.
func NewContributionLimiter(minContribution, maxContribution, hardCap *big.Int) *ContributionLimiter {
	return &ContributionLimiter{
		MinContribution: unsetIfZero(minContribution),
		MaxContribution: unsetIfZero(maxContribution),
		HardCap:         unsetIfZero(hardCap),
	}
}

// CheckContribution validates a contribution of amount from wallet.
//
// existing maps wallet → amount contributed so far; the total raised is the
// sum of its values. Returns nil if the contribution is within limits.
func (l *ContributionLimiter) CheckContribution(
	wallet string,
	amount *big.Int,
	existing map[string]*big.Int,
) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	// 1. Per-contribution minimum.
	if l.MinContribution != nil && amount.Cmp(l.MinContribution) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrBelowMinimum, amount, l.MinContribution)
	}

	// 2. Per-wallet maximum on the running total.
	walletTotal := new(big.Int).Add(amount, valueOf(existing[wallet]))
	if l.MaxContribution != nil && walletTotal.Cmp(l.MaxContribution) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrAboveMaximum, walletTotal, l.MaxContribution)
	}

	// 3. Hard cap across every wallet.
	if l.HardCap != nil {
		total := TotalRaised(existing)
		total.Add(total, amount)
		if total.Cmp(l.HardCap) > 0 {
			return fmt.Errorf("%w: %s > %s", ErrHardCapExceeded, total, l.HardCap)
		}
	}

	return nil
}

// Remaining returns how much more wallet may contribute, the smaller of its
// per-wallet headroom and the headroom under the hard cap. It returns nil
// when neither limit is set.
func (l *ContributionLimiter) Remaining(wallet string, existing map[string]*big.Int) *big.Int {
	var remaining *big.Int
	if l.MaxContribution != nil {
		remaining = new(big.Int).Sub(l.MaxContribution, valueOf(existing[wallet]))
	}
	if l.HardCap != nil {
		capLeft := new(big.Int).Sub(l.HardCap, TotalRaised(existing))
		if remaining == nil || capLeft.Cmp(remaining) < 0 {
			remaining = capLeft
		}
	}
	if remaining != nil && remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}
	return remaining
}

// TotalRaised sums the per-wallet totals.
func TotalRaised(existing map[string]*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range existing {
		total.Add(total, valueOf(v))
	}
	return total
}

func valueOf(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func unsetIfZero(v *big.Int) *big.Int {
	if v == nil || v.Sign() == 0 {
		return nil
	}
	return new(big.Int).Set(v)
}
