// Package allocation splits the funds a sale raised between the platform
// fee, the liquidity pool and the project owner.
//
// The platform fee comes off the top. Liquidity is a share of what is left
// after the fee, and the owner receives the remainder, so the three
// contribution-token parts always add back to the total raised exactly.
package allocation

import (
	"fmt"
	"math/big"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

// Result is the four-way split of a raise.
type Result struct {
	TotalRaised fixedpoint.Amount `json:"total_raised"`

	// Contribution-token parts.
	PlatformFee              fixedpoint.Amount `json:"platform_fee"`
	ContributionForLiquidity fixedpoint.Amount `json:"contribution_for_liquidity"`
	RemainingForOwner        fixedpoint.Amount `json:"remaining_for_owner"`

	// ProjectTokensForLiquidity is a unit conversion of
	// ContributionForLiquidity at the sale price, in project-token decimals.
	ProjectTokensForLiquidity fixedpoint.Amount `json:"project_tokens_for_liquidity"`
}

// Balanced reports whether the contribution-token parts sum to TotalRaised.
func (r Result) Balanced() bool {
	sum := new(big.Int).Add(r.PlatformFee.Value, r.ContributionForLiquidity.Value)
	sum.Add(sum, r.RemainingForOwner.Value)
	return sum.Cmp(r.TotalRaised.Value) == 0
}

// SplitRaisedFunds computes the allocation of totalRaised (in contribution
// token base units).
//
// tokenPrice is the 18-decimal fixed-point price of one project token in
// contribution tokens. A zero price fails with fixedpoint.ErrDivisionByZero.
func SplitRaisedFunds(
	totalRaised *big.Int,
	platformFeeRate, liquidityRate bps.Rate,
	tokenPrice *big.Int,
	contributionDecimals, projectDecimals uint8,
) (Result, error) {
	if totalRaised == nil || totalRaised.Sign() < 0 {
		return Result{}, fmt.Errorf("%w: total raised must be non-negative", fixedpoint.ErrInvalidNumber)
	}
	if !platformFeeRate.Valid() {
		return Result{}, fmt.Errorf("%w: platform fee %s", bps.ErrOutOfRange, platformFeeRate)
	}
	if !liquidityRate.Valid() {
		return Result{}, fmt.Errorf("%w: liquidity %s", bps.ErrOutOfRange, liquidityRate)
	}

	platformFee := bps.ApplyRate(totalRaised, platformFeeRate)
	afterFee := new(big.Int).Sub(totalRaised, platformFee)
	forLiquidity := bps.ApplyRate(afterFee, liquidityRate)
	remaining := new(big.Int).Sub(afterFee, forLiquidity)

	projectTokens, err := TokensAtPrice(forLiquidity, contributionDecimals, tokenPrice, projectDecimals)
	if err != nil {
		return Result{}, err
	}

	return Result{
		TotalRaised:               fixedpoint.NewAmount(totalRaised, contributionDecimals),
		PlatformFee:               fixedpoint.Amount{Value: platformFee, Decimals: contributionDecimals},
		ContributionForLiquidity:  fixedpoint.Amount{Value: forLiquidity, Decimals: contributionDecimals},
		RemainingForOwner:         fixedpoint.Amount{Value: remaining, Decimals: contributionDecimals},
		ProjectTokensForLiquidity: fixedpoint.Amount{Value: projectTokens, Decimals: projectDecimals},
	}, nil
}

// TokensAtPrice converts a contribution-token amount into project tokens at
// an 18-decimal price:
//
//	renormalize(renormalize(contribution, cd, 18) * 10^18 / tokenPrice, 18, pd)
//
// Division truncates.
func TokensAtPrice(contribution *big.Int, contributionDecimals uint8, tokenPrice *big.Int, projectDecimals uint8) (*big.Int, error) {
	if tokenPrice == nil || tokenPrice.Sign() == 0 {
		return nil, fmt.Errorf("%w: token price is zero", fixedpoint.ErrDivisionByZero)
	}
	at18 := fixedpoint.Renormalize(contribution, contributionDecimals, fixedpoint.ReferenceDecimals)
	tokens, err := fixedpoint.MulDiv(at18, fixedpoint.Pow10(fixedpoint.ReferenceDecimals), tokenPrice)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Renormalize(tokens, fixedpoint.ReferenceDecimals, projectDecimals), nil
}
