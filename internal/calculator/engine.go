package calculator

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/allocation"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/duration"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/swapfee"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/tokenomics"
)

// --- Request/Response types ---

// ParseAmountRequest is the JSON body for POST /amounts/parse.
type ParseAmountRequest struct {
	Text     string `json:"text"`
	Decimals uint8  `json:"decimals"`
}

// FormatAmountRequest is the JSON body for POST /amounts/format.
type FormatAmountRequest struct {
	Value              string `json:"value"` // base units
	Decimals           uint8  `json:"decimals"`
	MaxDisplayDecimals *int   `json:"max_display_decimals"` // nil → 6
}

// RenormalizeRequest is the JSON body for POST /amounts/renormalize.
type RenormalizeRequest struct {
	Value string `json:"value"` // base units
	From  uint8  `json:"from"`
	To    uint8  `json:"to"`
}

// PercentageRequest is the JSON body for POST /percentages/parse.
type PercentageRequest struct {
	Text string `json:"text"`
}

// PercentageResponse carries a parsed rate.
type PercentageResponse struct {
	Bps     bps.Rate `json:"bps"`
	Percent string   `json:"percent"`
}

// AllocationRequest is the JSON body for POST /allocations. Amounts are
// human decimal text; PlatformFeeBps defaults to the configured fee.
type AllocationRequest struct {
	TotalRaised          string    `json:"total_raised"`
	TokenPrice           string    `json:"token_price"`
	LiquidityPercentage  string    `json:"liquidity_percentage"`
	PlatformFeeBps       *bps.Rate `json:"platform_fee_bps"`
	ContributionDecimals uint8     `json:"contribution_decimals"`
	ProjectDecimals      uint8     `json:"project_decimals"`
}

// SwapFeesRequest is the JSON body for POST /swaps/fees. Unset fee fields
// fall back to the configured pool fees.
type SwapFeesRequest struct {
	AmountIn       string  `json:"amount_in"`
	Decimals       uint8   `json:"decimals"`
	TradingFeeBps  *uint64 `json:"trading_fee_bps"`
	ProtocolFeeBps *uint64 `json:"protocol_fee_bps"`
	Denominator    *uint64 `json:"denominator"`
}

// SwapQuoteRequest is the JSON body for POST /swaps/quote.
type SwapQuoteRequest struct {
	AmountIn    string          `json:"amount_in"`
	ReserveIn   string          `json:"reserve_in"`
	ReserveOut  string          `json:"reserve_out"`
	DecimalsIn  uint8           `json:"decimals_in"`
	DecimalsOut uint8           `json:"decimals_out"`
	Fees        *swapfee.Config `json:"fees"`
}

// DurationRequest is the JSON body for POST /durations. Exactly one of
// Days and Hours is expected; Days wins if both are set.
type DurationRequest struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

// DurationResponse carries a normalized duration.
type DurationResponse struct {
	Seconds duration.Seconds `json:"seconds"`
	Days    string           `json:"days"`
}

// --- HTTP Handlers ---

// ParseAmount handles POST /api/v1/amounts/parse
func (s *Service) ParseAmount(w http.ResponseWriter, r *http.Request) {
	var req ParseAmountRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := fixedpoint.ParseAmount(req.Text, req.Decimals)
	if err != nil {
		fail(w, "parse_amount", err)
		return
	}
	ok(w, "parse_amount", http.StatusOK, a)
}

// FormatAmount handles POST /api/v1/amounts/format
func (s *Service) FormatAmount(w http.ResponseWriter, r *http.Request) {
	var req FormatAmountRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := baseUnits(req.Value)
	if err != nil {
		fail(w, "format_amount", err)
		return
	}
	digits := fixedpoint.DefaultDisplayDecimals
	if req.MaxDisplayDecimals != nil {
		digits = *req.MaxDisplayDecimals
	}
	ok(w, "format_amount", http.StatusOK, map[string]string{
		"formatted": fixedpoint.FormatAmount(v, req.Decimals, digits),
	})
}

// Renormalize handles POST /api/v1/amounts/renormalize
func (s *Service) Renormalize(w http.ResponseWriter, r *http.Request) {
	var req RenormalizeRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := baseUnits(req.Value)
	if err != nil {
		fail(w, "renormalize", err)
		return
	}
	ok(w, "renormalize", http.StatusOK, fixedpoint.Amount{
		Value:    fixedpoint.Renormalize(v, req.From, req.To),
		Decimals: req.To,
	})
}

// ParsePercentage handles POST /api/v1/percentages/parse
func (s *Service) ParsePercentage(w http.ResponseWriter, r *http.Request) {
	var req PercentageRequest
	if !decode(w, r, &req) {
		return
	}
	rate, err := bps.ParsePercentage(req.Text)
	if err != nil {
		fail(w, "parse_percentage", err)
		return
	}
	ok(w, "parse_percentage", http.StatusOK, PercentageResponse{Bps: rate, Percent: rate.Percent()})
}

// SplitAllocation handles POST /api/v1/allocations
func (s *Service) SplitAllocation(w http.ResponseWriter, r *http.Request) {
	var req AllocationRequest
	if !decode(w, r, &req) {
		return
	}
	fee := s.platformFee
	if req.PlatformFeeBps != nil {
		fee = *req.PlatformFeeBps
	}
	res, err := s.split(req.TotalRaised, req.TokenPrice, req.LiquidityPercentage, fee,
		req.ContributionDecimals, req.ProjectDecimals)
	if err != nil {
		fail(w, "allocation", err)
		return
	}
	ok(w, "allocation", http.StatusOK, res)
}

// split parses the human inputs of an allocation and runs the splitter.
func (s *Service) split(total, price, liquidity string, fee bps.Rate, contributionDecimals, projectDecimals uint8) (allocation.Result, error) {
	t, err := fixedpoint.ParseAmount(total, contributionDecimals)
	if err != nil {
		return allocation.Result{}, fmt.Errorf("total raised: %w", err)
	}
	return s.splitBase(t.Value, price, liquidity, fee, contributionDecimals, projectDecimals)
}

// splitBase is split for a total already in contribution base units.
func (s *Service) splitBase(total *big.Int, price, liquidity string, fee bps.Rate, contributionDecimals, projectDecimals uint8) (allocation.Result, error) {
	p, err := fixedpoint.ParseAmount(price, fixedpoint.ReferenceDecimals)
	if err != nil {
		return allocation.Result{}, fmt.Errorf("token price: %w", err)
	}
	l, err := bps.ParsePercentage(liquidity)
	if err != nil {
		return allocation.Result{}, fmt.Errorf("liquidity percentage: %w", err)
	}
	return allocation.SplitRaisedFunds(total, fee, l, p.Value, contributionDecimals, projectDecimals)
}

// ComputeSwapFees handles POST /api/v1/swaps/fees
func (s *Service) ComputeSwapFees(w http.ResponseWriter, r *http.Request) {
	var req SwapFeesRequest
	if !decode(w, r, &req) {
		return
	}
	cfg := s.swapFees
	if req.TradingFeeBps != nil {
		cfg.TradingFeeBps = *req.TradingFeeBps
	}
	if req.ProtocolFeeBps != nil {
		cfg.ProtocolFeeBps = *req.ProtocolFeeBps
	}
	if req.Denominator != nil {
		cfg.Denominator = *req.Denominator
	}

	in, err := fixedpoint.ParseAmount(req.AmountIn, req.Decimals)
	if err != nil {
		fail(w, "swap_fees", fmt.Errorf("amount in: %w", err))
		return
	}
	b, err := cfg.Compute(in)
	if err != nil {
		fail(w, "swap_fees", err)
		return
	}
	ok(w, "swap_fees", http.StatusOK, b)
}

// QuoteSwap handles POST /api/v1/swaps/quote
func (s *Service) QuoteSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapQuoteRequest
	if !decode(w, r, &req) {
		return
	}
	cfg := s.swapFees
	if req.Fees != nil {
		cfg = *req.Fees
	}

	in, err := fixedpoint.ParseAmount(req.AmountIn, req.DecimalsIn)
	if err != nil {
		fail(w, "swap_quote", fmt.Errorf("amount in: %w", err))
		return
	}
	resIn, err := fixedpoint.ParseAmount(req.ReserveIn, req.DecimalsIn)
	if err != nil {
		fail(w, "swap_quote", fmt.Errorf("reserve in: %w", err))
		return
	}
	resOut, err := fixedpoint.ParseAmount(req.ReserveOut, req.DecimalsOut)
	if err != nil {
		fail(w, "swap_quote", fmt.Errorf("reserve out: %w", err))
		return
	}

	q, err := swapfee.QuoteExactIn(in, resIn, resOut, cfg)
	if err != nil {
		fail(w, "swap_quote", err)
		return
	}
	ok(w, "swap_quote", http.StatusOK, q)
}

// ValidateTokenomics handles POST /api/v1/tokenomics/validate
func (s *Service) ValidateTokenomics(w http.ResponseWriter, r *http.Request) {
	var in tokenomics.Input
	if !decode(w, r, &in) {
		return
	}
	rep, err := tokenomics.Validate(in)
	if err != nil {
		fail(w, "validate", err)
		return
	}
	recordFindings(rep)
	ok(w, "validate", http.StatusOK, rep)
}

// NormalizeDuration handles POST /api/v1/durations
func (s *Service) NormalizeDuration(w http.ResponseWriter, r *http.Request) {
	var req DurationRequest
	if !decode(w, r, &req) {
		return
	}
	var secs duration.Seconds
	var err error
	if strings.TrimSpace(req.Days) == "" && strings.TrimSpace(req.Hours) != "" {
		secs, err = duration.HoursToSeconds(req.Hours)
	} else {
		secs, err = duration.DaysToSeconds(req.Days)
	}
	if err != nil {
		fail(w, "duration", err)
		return
	}
	ok(w, "duration", http.StatusOK, DurationResponse{
		Seconds: secs,
		Days:    duration.SecondsToDays(secs, 6),
	})
}

// baseUnits parses a non-negative integer base-unit string.
func baseUnits(text string) (*big.Int, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, fixedpoint.ErrEmpty
	}
	v, good := new(big.Int).SetString(t, 10)
	if !good || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", fixedpoint.ErrInvalidNumber, text)
	}
	return v, nil
}
