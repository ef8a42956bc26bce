// Package swapfee computes AMM swap fee breakdowns and constant-product
// quotes from pool fee configuration read on-chain.
//
// The protocol fee is expected to be a subset of the trading fee. The
// calculator does not enforce that or clamp any result; Config.Validate is
// how callers reject such a configuration upstream.
package swapfee

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

var (
	// ErrProtocolExceedsTrading flags a fee configuration whose protocol fee
	// is larger than its trading fee.
	ErrProtocolExceedsTrading = errors.New("swapfee: protocol fee exceeds trading fee")

	// ErrInsufficientLiquidity is returned when a pool reserve is zero.
	ErrInsufficientLiquidity = errors.New("swapfee: insufficient liquidity")
)

// Config is the fee configuration of a pool.
type Config struct {
	TradingFeeBps  uint64 `json:"trading_fee_bps"`
	ProtocolFeeBps uint64 `json:"protocol_fee_bps"`
	Denominator    uint64 `json:"denominator"`
}

// Validate checks the configuration for the two mistakes the calculator
// itself tolerates.
func (c Config) Validate() error {
	if c.Denominator == 0 {
		return fmt.Errorf("%w: fee denominator", fixedpoint.ErrDivisionByZero)
	}
	if c.ProtocolFeeBps > c.TradingFeeBps {
		return fmt.Errorf("%w: %d > %d", ErrProtocolExceedsTrading, c.ProtocolFeeBps, c.TradingFeeBps)
	}
	return nil
}

// Breakdown is the fee split of one swap input. All values share the input
// amount's decimals.
type Breakdown struct {
	AmountIn        fixedpoint.Amount `json:"amount_in"`
	TotalFee        fixedpoint.Amount `json:"total_fee"`
	ProtocolFee     fixedpoint.Amount `json:"protocol_fee"`
	LPFee           fixedpoint.Amount `json:"lp_fee"`
	AmountAfterFees fixedpoint.Amount `json:"amount_after_fees"`
}

// ComputeSwapFees splits the fee on amountIn:
//
//	totalFee    = floor(amountIn * (trading + protocol) / denominator)
//	protocolFee = floor(amountIn * protocol / denominator)
//	lpFee       = totalFee - protocolFee
//	afterFees   = amountIn - totalFee
func ComputeSwapFees(amountIn fixedpoint.Amount, tradingFeeBps, protocolFeeBps, denominator uint64) (Breakdown, error) {
	if amountIn.Value == nil || amountIn.Value.Sign() < 0 {
		return Breakdown{}, fmt.Errorf("%w: amount in must be non-negative", fixedpoint.ErrInvalidNumber)
	}
	if denominator == 0 {
		return Breakdown{}, fmt.Errorf("%w: fee denominator", fixedpoint.ErrDivisionByZero)
	}

	// The combined rate can exceed uint64.
	rate := new(big.Int).SetUint64(tradingFeeBps)
	rate.Add(rate, new(big.Int).SetUint64(protocolFeeBps))
	totalFee, err := fixedpoint.MulDiv(amountIn.Value, rate, new(big.Int).SetUint64(denominator))
	if err != nil {
		return Breakdown{}, err
	}
	protocolFee, err := bps.ApplyRateOver(amountIn.Value, protocolFeeBps, denominator)
	if err != nil {
		return Breakdown{}, err
	}
	lpFee := new(big.Int).Sub(totalFee, protocolFee)
	after := new(big.Int).Sub(amountIn.Value, totalFee)

	dec := amountIn.Decimals
	return Breakdown{
		AmountIn:        fixedpoint.NewAmount(amountIn.Value, dec),
		TotalFee:        fixedpoint.Amount{Value: totalFee, Decimals: dec},
		ProtocolFee:     fixedpoint.Amount{Value: protocolFee, Decimals: dec},
		LPFee:           fixedpoint.Amount{Value: lpFee, Decimals: dec},
		AmountAfterFees: fixedpoint.Amount{Value: after, Decimals: dec},
	}, nil
}

// Compute is ComputeSwapFees with the receiver's configuration.
func (c Config) Compute(amountIn fixedpoint.Amount) (Breakdown, error) {
	return ComputeSwapFees(amountIn, c.TradingFeeBps, c.ProtocolFeeBps, c.Denominator)
}

// Quote is the expected result of an exact-input swap.
type Quote struct {
	Fees           Breakdown         `json:"fees"`
	AmountOut      fixedpoint.Amount `json:"amount_out"`
	PriceImpactBps uint64            `json:"price_impact_bps"`
}

// QuoteExactIn prices an exact-input swap against constant-product reserves.
// Fees are taken from the input first:
//
//	amountOut = afterFees * reserveOut / (reserveIn + afterFees)
//
// Price impact compares amountOut to the spot-price output of afterFees.
func QuoteExactIn(amountIn fixedpoint.Amount, reserveIn, reserveOut fixedpoint.Amount, cfg Config) (Quote, error) {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return Quote{}, ErrInsufficientLiquidity
	}
	fees, err := cfg.Compute(amountIn)
	if err != nil {
		return Quote{}, err
	}
	if fees.AmountAfterFees.Sign() < 0 {
		return Quote{}, fmt.Errorf("%w: fees exceed input", fixedpoint.ErrInvalidNumber)
	}

	in := fees.AmountAfterFees.Value
	out, err := fixedpoint.MulDiv(in, reserveOut.Value, new(big.Int).Add(reserveIn.Value, in))
	if err != nil {
		return Quote{}, err
	}

	var impact uint64
	ideal, err := fixedpoint.MulDiv(in, reserveOut.Value, reserveIn.Value)
	if err != nil {
		return Quote{}, err
	}
	if ideal.Sign() > 0 {
		diff := new(big.Int).Sub(ideal, out)
		imp, err := fixedpoint.MulDiv(diff, big.NewInt(bps.Denominator), ideal)
		if err != nil {
			return Quote{}, err
		}
		impact = imp.Uint64()
	}

	return Quote{
		Fees:           fees,
		AmountOut:      fixedpoint.Amount{Value: out, Decimals: reserveOut.Decimals},
		PriceImpactBps: impact,
	}, nil
}
