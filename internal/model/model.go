// Package model defines the domain types shared across the launchpad engine.
// Sale parameters are kept as the decimal text the owner typed; they are only
// converted to base units at the point of calculation.
package model

import (
	"time"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/tokenomics"
)

// Draft statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// SaleDraft is a token launch form as last saved by its owner.
type SaleDraft struct {
	ID        string `json:"id" db:"id"`
	Owner     string `json:"owner" db:"owner"`
	Status    string `json:"status" db:"status"`
	TokenName string `json:"token_name" db:"token_name"`
	Symbol    string `json:"token_symbol" db:"token_symbol"`

	ContributionDecimals uint8 `json:"contribution_decimals" db:"contribution_decimals"`
	ProjectDecimals      uint8 `json:"project_decimals" db:"project_decimals"`

	FundingGoal         string `json:"funding_goal" db:"funding_goal"` // hard cap
	SoftCap             string `json:"soft_cap" db:"soft_cap"`
	MinContribution     string `json:"min_contribution" db:"min_contribution"`
	MaxContribution     string `json:"max_contribution" db:"max_contribution"`
	TokenPrice          string `json:"token_price" db:"token_price"` // contribution tokens per project token
	InitialTotalSupply  string `json:"initial_total_supply" db:"initial_total_supply"`
	AmountTokensForSale string `json:"amount_tokens_for_sale" db:"amount_tokens_for_sale"`
	LiquidityPercentage string `json:"liquidity_percentage" db:"liquidity_percentage"`

	SaleDurationDays      string `json:"sale_duration_days" db:"sale_duration_days"`
	LiquidityLockDays     string `json:"liquidity_lock_days" db:"liquidity_lock_days"`
	VestingCliffDays      string `json:"vesting_cliff_days" db:"vesting_cliff_days"`
	VestingDurationDays   string `json:"vesting_duration_days" db:"vesting_duration_days"`
	VestingInitialRelease string `json:"vesting_initial_release" db:"vesting_initial_release"` // percentage

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TokenomicsInput extracts the fields the tokenomics validator checks.
func (d *SaleDraft) TokenomicsInput() tokenomics.Input {
	return tokenomics.Input{
		FundingGoal:          d.FundingGoal,
		SoftCap:              d.SoftCap,
		TokenPrice:           d.TokenPrice,
		InitialTotalSupply:   d.InitialTotalSupply,
		AmountTokensForSale:  d.AmountTokensForSale,
		LiquidityPercentage:  d.LiquidityPercentage,
		ContributionDecimals: d.ContributionDecimals,
		ProjectDecimals:      d.ProjectDecimals,
	}
}

// Contribution is an immutable record of one wallet's contribution to a
// sale, in contribution-token base units.
type Contribution struct {
	ID        string            `json:"id" db:"id"`
	DraftID   string            `json:"draft_id" db:"draft_id"`
	Wallet    string            `json:"wallet" db:"wallet"`
	Amount    fixedpoint.Amount `json:"amount" db:"amount"`
	Timestamp time.Time         `json:"timestamp" db:"timestamp"`
}

// DraftReport is a draft's validation result as broadcast to watchers.
type DraftReport struct {
	DraftID string            `json:"draft_id"`
	Report  tokenomics.Report `json:"report"`
}
