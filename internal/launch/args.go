// Package launch converts a sale draft into the integer arguments the
// launchpad contract's createProject call takes.
package launch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/duration"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/token"
)

// ErrIncomplete is returned when a field the contract requires is empty.
var ErrIncomplete = errors.New("launch: draft incomplete")

// Args are the createProject arguments. Amounts are uint256 base units
// rendered in decimal; rates are basis points; durations are seconds.
type Args struct {
	TokenName   string `json:"token_name"`
	TokenSymbol string `json:"token_symbol"`

	InitialTotalSupply  string `json:"initial_total_supply"`
	AmountTokensForSale string `json:"amount_tokens_for_sale"`
	FundingGoal         string `json:"funding_goal"`
	SoftCap             string `json:"soft_cap"`
	MinContribution     string `json:"min_contribution"`
	MaxContribution     string `json:"max_contribution"`
	TokenPrice          string `json:"token_price"`

	LiquidityPercentage   bps.Rate `json:"liquidity_percentage"`
	VestingInitialRelease bps.Rate `json:"vesting_initial_release"`

	SaleDuration          duration.Seconds `json:"sale_duration"`
	LiquidityLockDuration duration.Seconds `json:"liquidity_lock_duration"`
	VestingCliff          duration.Seconds `json:"vesting_cliff"`
	VestingDuration       duration.Seconds `json:"vesting_duration"`
}

// Build converts every field of d. It fails on the first empty or malformed
// field, naming it. Optional fields (min/max contribution, vesting) default
// to zero when empty.
func Build(d *model.SaleDraft) (*Args, error) {
	meta, err := token.ParseMetadata(d.TokenName, d.Symbol, d.ProjectDecimals)
	if err != nil {
		return nil, err
	}
	if err := token.CheckDecimals(d.ContributionDecimals); err != nil {
		return nil, err
	}

	b := builder{}
	args := &Args{
		TokenName:   meta.Name,
		TokenSymbol: meta.Symbol,

		InitialTotalSupply:  b.amount("initial_total_supply", d.InitialTotalSupply, d.ProjectDecimals, true),
		AmountTokensForSale: b.amount("amount_tokens_for_sale", d.AmountTokensForSale, d.ProjectDecimals, true),
		FundingGoal:         b.amount("funding_goal", d.FundingGoal, d.ContributionDecimals, true),
		SoftCap:             b.amount("soft_cap", d.SoftCap, d.ContributionDecimals, true),
		MinContribution:     b.amount("min_contribution", d.MinContribution, d.ContributionDecimals, false),
		MaxContribution:     b.amount("max_contribution", d.MaxContribution, d.ContributionDecimals, false),
		TokenPrice:          b.amount("token_price", d.TokenPrice, fixedpoint.ReferenceDecimals, true),

		LiquidityPercentage:   b.rate("liquidity_percentage", d.LiquidityPercentage, true),
		VestingInitialRelease: b.rate("vesting_initial_release", d.VestingInitialRelease, false),

		SaleDuration:          b.days("sale_duration_days", d.SaleDurationDays, true),
		LiquidityLockDuration: b.days("liquidity_lock_days", d.LiquidityLockDays, true),
		VestingCliff:          b.days("vesting_cliff_days", d.VestingCliffDays, false),
		VestingDuration:       b.days("vesting_duration_days", d.VestingDurationDays, false),
	}
	if b.err != nil {
		return nil, b.err
	}
	if !args.VestingInitialRelease.Valid() {
		return nil, fmt.Errorf("vesting_initial_release: %w: %s", bps.ErrOutOfRange, args.VestingInitialRelease)
	}
	if args.VestingDuration < args.VestingCliff {
		return nil, fmt.Errorf("%w: vesting duration shorter than cliff", bps.ErrOutOfRange)
	}
	return args, nil
}

// builder keeps the first conversion error so Build reads as one literal.
type builder struct {
	err error
}

func (b *builder) fail(field string, err error) {
	if b.err == nil {
		b.err = fmt.Errorf("%s: %w", field, err)
	}
}

func (b *builder) amount(field, text string, decimals uint8, required bool) string {
	if strings.TrimSpace(text) == "" {
		if required {
			b.fail(field, ErrIncomplete)
		}
		return "0"
	}
	a, err := fixedpoint.ParseAmount(text, decimals)
	if err != nil {
		b.fail(field, err)
		return ""
	}
	u, err := a.Uint256()
	if err != nil {
		b.fail(field, err)
		return ""
	}
	return u.Dec()
}

func (b *builder) rate(field, text string, required bool) bps.Rate {
	if strings.TrimSpace(text) == "" {
		if required {
			b.fail(field, ErrIncomplete)
		}
		return 0
	}
	r, err := bps.ParsePercentage(text)
	if err != nil {
		b.fail(field, err)
	}
	return r
}

func (b *builder) days(field, text string, required bool) duration.Seconds {
	if strings.TrimSpace(text) == "" {
		if required {
			b.fail(field, ErrIncomplete)
		}
		return 0
	}
	s, err := duration.DaysToSeconds(text)
	if err != nil {
		b.fail(field, err)
	}
	return s
}
