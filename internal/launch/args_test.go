package launch

import (
	"errors"
	"testing"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/token"
)

func completeDraft() *model.SaleDraft {
	return &model.SaleDraft{
		ID:                    "d1",
		TokenName:             "Exhibition Token",
		Symbol:                "exh",
		ContributionDecimals:  6,
		ProjectDecimals:       18,
		FundingGoal:           "1000000",
		SoftCap:               "600000",
		MinContribution:       "100",
		MaxContribution:       "50000",
		TokenPrice:            "0.2",
		InitialTotalSupply:    "10000000",
		AmountTokensForSale:   "5000000",
		LiquidityPercentage:   "80",
		SaleDurationDays:      "14",
		LiquidityLockDays:     "365",
		VestingCliffDays:      "30",
		VestingDurationDays:   "180",
		VestingInitialRelease: "10",
	}
}

func TestBuild(t *testing.T) {
	args, err := Build(completeDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		field, got, want string
	}{
		{"symbol", args.TokenSymbol, "EXH"},
		{"funding goal", args.FundingGoal, "1000000000000"},
		{"soft cap", args.SoftCap, "600000000000"},
		{"min contribution", args.MinContribution, "100000000"},
		{"token price", args.TokenPrice, "200000000000000000"},
		{"supply", args.InitialTotalSupply, "10000000000000000000000000"},
		{"for sale", args.AmountTokensForSale, "5000000000000000000000000"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %s, got %s", c.field, c.want, c.got)
		}
	}
	if args.LiquidityPercentage != 8000 || args.VestingInitialRelease != 1000 {
		t.Errorf("rates: got %d / %d", args.LiquidityPercentage, args.VestingInitialRelease)
	}
	if args.SaleDuration != 1_209_600 || args.LiquidityLockDuration != 31_536_000 {
		t.Errorf("durations: got %d / %d", args.SaleDuration, args.LiquidityLockDuration)
	}
	if args.VestingCliff != 2_592_000 || args.VestingDuration != 15_552_000 {
		t.Errorf("vesting: got %d / %d", args.VestingCliff, args.VestingDuration)
	}
}

func TestBuild_OptionalFieldsDefaultToZero(t *testing.T) {
	d := completeDraft()
	d.MinContribution = ""
	d.MaxContribution = ""
	d.VestingCliffDays = ""
	d.VestingDurationDays = ""
	d.VestingInitialRelease = ""

	args, err := Build(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.MinContribution != "0" || args.MaxContribution != "0" || args.VestingCliff != 0 {
		t.Errorf("expected zero defaults, got %+v", args)
	}
}

func TestBuild_Incomplete(t *testing.T) {
	d := completeDraft()
	d.TokenPrice = ""
	_, err := Build(d)
	if !errors.Is(err, ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
}

func TestBuild_Malformed(t *testing.T) {
	d := completeDraft()
	d.LiquidityLockDays = "a year"
	if _, err := Build(d); !errors.Is(err, fixedpoint.ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber, got %v", err)
	}

	d = completeDraft()
	d.Symbol = "E"
	if _, err := Build(d); !errors.Is(err, token.ErrInvalidSymbol) {
		t.Errorf("expected ErrInvalidSymbol, got %v", err)
	}
}

func TestBuild_Overflow(t *testing.T) {
	d := completeDraft()
	// 10^60 tokens at 18 decimals needs 260 bits.
	d.InitialTotalSupply = "1000000000000000000000000000000000000000000000000000000000000"
	if _, err := Build(d); !errors.Is(err, fixedpoint.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestBuild_VestingShorterThanCliff(t *testing.T) {
	d := completeDraft()
	d.VestingDurationDays = "10"
	if _, err := Build(d); !errors.Is(err, bps.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}
