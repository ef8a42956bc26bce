// Package tokenomics cross-checks the parameters of a token sale for
// internal consistency.
//
// Validate never fails on a business-rule violation. Those become findings
// in the report, because a user editing a form is expected to pass through
// inconsistent states. Only malformed numeric text is an error.
package tokenomics

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

// Kind is the severity of a finding.
type Kind int

const (
	Hint Kind = iota
	Warning
)

func (k Kind) String() string {
	switch k {
	case Hint:
		return "hint"
	case Warning:
		return "warning"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hint":
		*k = Hint
	case "warning":
		*k = Warning
	default:
		return fmt.Errorf("tokenomics: unknown finding kind %q", text)
	}
	return nil
}

// Code identifies which check produced a finding.
type Code string

const (
	CodeExpectedTokens      Code = "expected_tokens_for_sale"
	CodeSaleAmountMismatch  Code = "sale_amount_mismatch"
	CodeInsufficientSupply  Code = "insufficient_supply"
	CodeSuggestedSupply     Code = "suggested_supply"
	CodeSoftCapTooLow       Code = "soft_cap_too_low"
	CodeSoftCapAboveGoal    Code = "soft_cap_above_goal"
	CodeLiquidityOutOfRange Code = "liquidity_out_of_range"
)

// Liquidity percentage accepted by the launch form.
const (
	MinLiquidityRate bps.Rate = 7000
	MaxLiquidityRate bps.Rate = 10000
)

// Finding is one observation about a sale configuration.
type Finding struct {
	Kind    Kind   `json:"kind"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Input is the sale configuration as typed by the user. Empty fields are
// "not yet entered" and the checks depending on them are skipped.
//
// FundingGoal and SoftCap are in contribution tokens, InitialTotalSupply and
// AmountTokensForSale in project tokens, TokenPrice is the price of one
// project token in contribution tokens and LiquidityPercentage is a
// percentage such as "80".
type Input struct {
	FundingGoal         string `json:"funding_goal"`
	SoftCap             string `json:"soft_cap"`
	TokenPrice          string `json:"token_price"`
	InitialTotalSupply  string `json:"initial_total_supply"`
	AmountTokensForSale string `json:"amount_tokens_for_sale"`
	LiquidityPercentage string `json:"liquidity_percentage"`

	ContributionDecimals uint8 `json:"contribution_decimals"`
	ProjectDecimals      uint8 `json:"project_decimals"`
}

// Report is the result of Validate. Valid is true iff there are no
// warnings; hints never affect it.
type Report struct {
	ExpectedTokensForSale *fixedpoint.Amount `json:"expected_tokens_for_sale,omitempty"`
	LiquidityTokens       *fixedpoint.Amount `json:"liquidity_tokens,omitempty"`
	MinimumSupply         *fixedpoint.Amount `json:"minimum_supply,omitempty"`
	Findings              []Finding          `json:"findings"`
	Valid                 bool               `json:"valid"`
}

// Warnings returns the messages of all warning findings in order.
func (r Report) Warnings() []string { return r.messages(Warning) }

// Hints returns the messages of all hint findings in order.
func (r Report) Hints() []string { return r.messages(Hint) }

func (r Report) messages(k Kind) []string {
	out := []string{}
	for _, f := range r.Findings {
		if f.Kind == k {
			out = append(out, f.Message)
		}
	}
	return out
}

// Has reports whether a finding with the given code is present.
func (r Report) Has(code Code) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

type parsed struct {
	fundingGoal *big.Int // contribution decimals
	softCap     *big.Int // contribution decimals
	price       *big.Int // 18 decimals
	supply      *big.Int // project decimals
	forSale     *big.Int // project decimals
	liquidity   *bps.Rate
}

func parse(in Input) (parsed, error) {
	var p parsed
	var err error
	if p.fundingGoal, err = optionalAmount("funding goal", in.FundingGoal, in.ContributionDecimals); err != nil {
		return p, err
	}
	if p.softCap, err = optionalAmount("soft cap", in.SoftCap, in.ContributionDecimals); err != nil {
		return p, err
	}
	if p.price, err = optionalAmount("token price", in.TokenPrice, fixedpoint.ReferenceDecimals); err != nil {
		return p, err
	}
	if p.supply, err = optionalAmount("initial total supply", in.InitialTotalSupply, in.ProjectDecimals); err != nil {
		return p, err
	}
	if p.forSale, err = optionalAmount("tokens for sale", in.AmountTokensForSale, in.ProjectDecimals); err != nil {
		return p, err
	}
	if strings.TrimSpace(in.LiquidityPercentage) != "" {
		r, err := bps.ParsePercentage(in.LiquidityPercentage)
		if err != nil {
			return p, fmt.Errorf("liquidity percentage: %w", err)
		}
		p.liquidity = &r
	}
	return p, nil
}

func optionalAmount(field, text string, decimals uint8) (*big.Int, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	a, err := fixedpoint.ParseAmount(text, decimals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return a.Value, nil
}

func positive(x *big.Int) bool { return x != nil && x.Sign() > 0 }

// Validate runs every check against in and collects the findings. The checks
// are independent; each one runs when the fields it needs are present.
func Validate(in Input) (Report, error) {
	p, err := parse(in)
	if err != nil {
		return Report{}, err
	}

	v := validator{in: in, p: p}
	v.expectedTokens()
	v.liquidityTokens()
	v.saleAmountMismatch()
	v.supplySufficiency()
	v.softCapFloor()
	v.liquidityRange()

	v.report.Valid = true
	for _, f := range v.report.Findings {
		if f.Kind == Warning {
			v.report.Valid = false
			break
		}
	}
	if v.report.Findings == nil {
		v.report.Findings = []Finding{}
	}
	return v.report, nil
}

type validator struct {
	in     Input
	p      parsed
	report Report
}

func (v *validator) add(kind Kind, code Code, format string, args ...any) {
	v.report.Findings = append(v.report.Findings, Finding{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) project(x *big.Int) string {
	return fixedpoint.FormatAmount(x, v.in.ProjectDecimals, fixedpoint.DefaultDisplayDecimals)
}

func (v *validator) contribution(x *big.Int) string {
	return fixedpoint.FormatAmount(x, v.in.ContributionDecimals, fixedpoint.DefaultDisplayDecimals)
}

// fundingGoalAt18 is the funding goal at the 18-decimal reference scale.
func (v *validator) fundingGoalAt18() *big.Int {
	return fixedpoint.Renormalize(v.p.fundingGoal, v.in.ContributionDecimals, fixedpoint.ReferenceDecimals)
}

// tokensFor converts an 18-decimal contribution amount into project tokens
// at the sale price.
func (v *validator) tokensFor(at18 *big.Int) *big.Int {
	tokens, _ := fixedpoint.MulDiv(at18, fixedpoint.Pow10(fixedpoint.ReferenceDecimals), v.p.price)
	return fixedpoint.Renormalize(tokens, fixedpoint.ReferenceDecimals, v.in.ProjectDecimals)
}

func (v *validator) expectedTokens() {
	if !positive(v.p.fundingGoal) || !positive(v.p.price) {
		return
	}
	expected := v.tokensFor(v.fundingGoalAt18())
	a := fixedpoint.Amount{Value: expected, Decimals: v.in.ProjectDecimals}
	v.report.ExpectedTokensForSale = &a
	v.add(Hint, CodeExpectedTokens,
		"At this price, the funding goal sells %s project tokens.", v.project(expected))
}

func (v *validator) liquidityTokens() {
	if !positive(v.p.fundingGoal) || !positive(v.p.price) || v.p.liquidity == nil {
		return
	}
	contribution := bps.ApplyRate(v.fundingGoalAt18(), *v.p.liquidity)
	a := fixedpoint.Amount{Value: v.tokensFor(contribution), Decimals: v.in.ProjectDecimals}
	v.report.LiquidityTokens = &a
}

func (v *validator) saleAmountMismatch() {
	if v.report.ExpectedTokensForSale == nil || !positive(v.p.forSale) {
		return
	}
	expected := v.report.ExpectedTokensForSale.Value
	if expected.Sign() <= 0 {
		return
	}
	diff := new(big.Int).Sub(v.p.forSale, expected)
	diff.Abs(diff)

	tolerance := new(big.Int).Quo(expected, big.NewInt(1000))
	if tolerance.Sign() == 0 {
		tolerance.SetInt64(1)
	}
	if diff.Cmp(tolerance) > 0 {
		v.add(Warning, CodeSaleAmountMismatch,
			"Tokens for sale (%s) do not match funding goal / token price (%s).",
			v.project(v.p.forSale), v.project(expected))
	}
}

// supplySufficiency waits for tokens for sale; liquidity alone is not the
// supply requirement.
func (v *validator) supplySufficiency() {
	if v.p.forSale == nil {
		return
	}
	required := new(big.Int).Set(v.p.forSale)
	if v.report.LiquidityTokens != nil {
		required.Add(required, v.report.LiquidityTokens.Value)
	}
	if required.Sign() == 0 {
		return
	}
	minimum := new(big.Int).Add(required, new(big.Int).Quo(required, big.NewInt(100)))
	a := fixedpoint.Amount{Value: minimum, Decimals: v.in.ProjectDecimals}
	v.report.MinimumSupply = &a

	if positive(v.p.supply) && v.p.supply.Cmp(minimum) < 0 {
		v.add(Warning, CodeInsufficientSupply,
			"Initial supply (%s) is below tokens for sale plus liquidity with a 1%% margin (%s).",
			v.project(v.p.supply), v.project(minimum))
		return
	}
	if v.p.supply == nil {
		v.add(Hint, CodeSuggestedSupply,
			"Initial supply should be at least %s project tokens.", v.project(minimum))
	}
}

func (v *validator) softCapFloor() {
	if !positive(v.p.softCap) || !positive(v.p.fundingGoal) {
		return
	}
	floor := new(big.Int).Mul(v.p.fundingGoal, big.NewInt(51))
	floor.Quo(floor, big.NewInt(100))
	if v.p.softCap.Cmp(floor) < 0 {
		v.add(Warning, CodeSoftCapTooLow,
			"Soft cap (%s) is below 51%% of the funding goal (%s).",
			v.contribution(v.p.softCap), v.contribution(floor))
	}
	if v.p.softCap.Cmp(v.p.fundingGoal) > 0 {
		v.add(Warning, CodeSoftCapAboveGoal,
			"Soft cap (%s) exceeds the funding goal (%s).",
			v.contribution(v.p.softCap), v.contribution(v.p.fundingGoal))
	}
}

func (v *validator) liquidityRange() {
	if v.p.liquidity == nil {
		return
	}
	if err := bps.CheckRange(*v.p.liquidity, MinLiquidityRate, MaxLiquidityRate); err != nil {
		v.add(Warning, CodeLiquidityOutOfRange,
			"Liquidity percentage %s must be between %s and %s.",
			*v.p.liquidity, MinLiquidityRate, MaxLiquidityRate)
	}
}
