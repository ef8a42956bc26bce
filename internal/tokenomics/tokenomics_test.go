package tokenomics

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

// baseInput is a consistent configuration: 1,000,000 goal at 0.2 per token
// sells 5,000,000 tokens; 80% liquidity needs 4,000,000 more.
func baseInput() Input {
	return Input{
		FundingGoal:          "1000000",
		SoftCap:              "600000",
		TokenPrice:           "0.2",
		InitialTotalSupply:   "10000000",
		AmountTokensForSale:  "5000000",
		LiquidityPercentage:  "80",
		ContributionDecimals: 6,
		ProjectDecimals:      18,
	}
}

func mustValidate(t *testing.T, in Input) Report {
	t.Helper()
	r, err := Validate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestValidate_Consistent(t *testing.T) {
	r := mustValidate(t, baseInput())
	if !r.Valid {
		t.Errorf("expected valid report, warnings: %v", r.Warnings())
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("expected no warnings, got %v", r.Warnings())
	}
	if r.ExpectedTokensForSale == nil || r.ExpectedTokensForSale.Format(6) != "5000000" {
		t.Errorf("expected 5000000 tokens for sale, got %v", r.ExpectedTokensForSale)
	}
	if r.LiquidityTokens == nil || r.LiquidityTokens.Format(6) != "4000000" {
		t.Errorf("expected 4000000 liquidity tokens, got %v", r.LiquidityTokens)
	}
	if r.MinimumSupply == nil || r.MinimumSupply.Format(6) != "9090000" {
		t.Errorf("expected minimum supply 9090000, got %v", r.MinimumSupply)
	}
	if !r.Has(CodeExpectedTokens) {
		t.Error("expected the expected-tokens hint")
	}
	if len(r.Hints()) != 1 {
		t.Errorf("expected one hint, got %v", r.Hints())
	}
}

// --- Soft cap ---

func TestValidate_SoftCapBelowFloor(t *testing.T) {
	in := baseInput()
	in.SoftCap = "400000"
	r := mustValidate(t, in)
	if !r.Has(CodeSoftCapTooLow) {
		t.Error("expected soft cap warning at 40% of goal")
	}
	if r.Valid {
		t.Error("report with a soft cap warning must be invalid")
	}
}

func TestValidate_SoftCapAtSixtyPercent(t *testing.T) {
	r := mustValidate(t, baseInput())
	if r.Has(CodeSoftCapTooLow) {
		t.Error("unexpected soft cap warning at 60% of goal")
	}
}

func TestValidate_SoftCapAtFloorBoundary(t *testing.T) {
	in := baseInput()
	in.SoftCap = "510000"
	if r := mustValidate(t, in); r.Has(CodeSoftCapTooLow) {
		t.Error("51% exactly should pass")
	}
	in.SoftCap = "509999.999999"
	if r := mustValidate(t, in); !r.Has(CodeSoftCapTooLow) {
		t.Error("just below 51% should warn")
	}
}

func TestValidate_SoftCapAboveGoal(t *testing.T) {
	in := baseInput()
	in.SoftCap = "1200000"
	r := mustValidate(t, in)
	if !r.Has(CodeSoftCapAboveGoal) || r.Valid {
		t.Errorf("expected soft-cap-above-goal warning, got %+v", r.Findings)
	}
}

// --- Sale amount ---

func TestValidate_SaleAmountWithinTolerance(t *testing.T) {
	in := baseInput()
	in.AmountTokensForSale = "5004000" // 0.08% off
	if r := mustValidate(t, in); r.Has(CodeSaleAmountMismatch) {
		t.Error("difference under 0.1% should be tolerated")
	}
}

func TestValidate_SaleAmountMismatch(t *testing.T) {
	in := baseInput()
	in.AmountTokensForSale = "5006000" // 0.12% off
	in.InitialTotalSupply = "20000000"
	r := mustValidate(t, in)
	if !r.Has(CodeSaleAmountMismatch) {
		t.Fatal("expected sale amount mismatch warning")
	}
	if r.Valid {
		t.Error("mismatch must invalidate the report")
	}
	if !strings.Contains(r.Warnings()[0], "5006000") {
		t.Errorf("warning should mention the declared amount: %q", r.Warnings()[0])
	}
}

func TestValidate_MismatchToleranceFloorsAtOneUnit(t *testing.T) {
	// 0-decimal tokens: goal 100 at price 1 → 100 tokens; tolerance max(0, 1) = 1.
	in := Input{
		FundingGoal:          "100",
		TokenPrice:           "1",
		AmountTokensForSale:  "101",
		ContributionDecimals: 0,
		ProjectDecimals:      0,
	}
	if r := mustValidate(t, in); r.Has(CodeSaleAmountMismatch) {
		t.Error("one base unit off should be tolerated")
	}
	in.AmountTokensForSale = "102"
	if r := mustValidate(t, in); !r.Has(CodeSaleAmountMismatch) {
		t.Error("two base units off should warn")
	}
}

// --- Supply ---

func TestValidate_InsufficientSupply(t *testing.T) {
	in := baseInput()
	in.InitialTotalSupply = "9000000" // below 9,090,000
	r := mustValidate(t, in)
	if !r.Has(CodeInsufficientSupply) || r.Valid {
		t.Errorf("expected insufficient supply warning, got %+v", r.Findings)
	}

	in.InitialTotalSupply = "9090000"
	if r := mustValidate(t, in); r.Has(CodeInsufficientSupply) {
		t.Error("supply at the minimum should pass")
	}
}

func TestValidate_SuggestedSupplyHint(t *testing.T) {
	in := baseInput()
	in.InitialTotalSupply = ""
	r := mustValidate(t, in)
	if !r.Has(CodeSuggestedSupply) {
		t.Fatal("expected suggested supply hint")
	}
	if !r.Valid {
		t.Error("hints must not invalidate the report")
	}
}

func TestValidate_SupplyCheckWaitsForSaleAmount(t *testing.T) {
	// 80% liquidity still needs 4,000,000 tokens, far above a 1,000 supply,
	// but the requirement is incomplete without tokens for sale.
	in := baseInput()
	in.AmountTokensForSale = ""
	in.InitialTotalSupply = "1000"
	r := mustValidate(t, in)
	if r.Has(CodeInsufficientSupply) || r.Has(CodeSuggestedSupply) {
		t.Errorf("supply judged before tokens for sale were entered: %+v", r.Findings)
	}
	if r.MinimumSupply != nil {
		t.Errorf("expected no minimum supply, got %v", r.MinimumSupply)
	}

	in.AmountTokensForSale = "5000000"
	if r := mustValidate(t, in); !r.Has(CodeInsufficientSupply) {
		t.Error("expected insufficient supply once tokens for sale are entered")
	}
}

// --- Liquidity ---

func TestValidate_LiquidityOutOfRange(t *testing.T) {
	in := baseInput()
	in.LiquidityPercentage = "60"
	r := mustValidate(t, in)
	if !r.Has(CodeLiquidityOutOfRange) {
		t.Error("expected liquidity range warning for 60%")
	}

	in.LiquidityPercentage = "70"
	if r := mustValidate(t, in); r.Has(CodeLiquidityOutOfRange) {
		t.Error("70% is the lower bound and should pass")
	}
}

func TestValidate_LiquidityAcrossDecimals(t *testing.T) {
	// Same sale with an 18-decimal contribution token.
	in := baseInput()
	in.ContributionDecimals = 18
	r := mustValidate(t, in)
	if r.LiquidityTokens == nil || r.LiquidityTokens.Format(6) != "4000000" {
		t.Errorf("expected 4000000 liquidity tokens, got %v", r.LiquidityTokens)
	}
	if !r.Valid {
		t.Errorf("expected valid report, warnings: %v", r.Warnings())
	}
}

// --- Input handling ---

func TestValidate_EmptyInput(t *testing.T) {
	r := mustValidate(t, Input{ContributionDecimals: 6, ProjectDecimals: 18})
	if !r.Valid {
		t.Error("empty form should be valid")
	}
	if len(r.Findings) != 0 {
		t.Errorf("expected no findings, got %+v", r.Findings)
	}
	if r.ExpectedTokensForSale != nil || r.LiquidityTokens != nil {
		t.Error("derived amounts should be absent")
	}
}

func TestValidate_MalformedNumber(t *testing.T) {
	cases := map[string]func(*Input){
		"funding goal": func(in *Input) { in.FundingGoal = "abc" },
		"soft cap":     func(in *Input) { in.SoftCap = "1.2.3" },
		"price":        func(in *Input) { in.TokenPrice = "-0.2" },
		"supply":       func(in *Input) { in.InitialTotalSupply = "1e6" },
		"liquidity":    func(in *Input) { in.LiquidityPercentage = "eighty" },
	}
	for name, mutate := range cases {
		in := baseInput()
		mutate(&in)
		_, err := Validate(in)
		if !errors.Is(err, fixedpoint.ErrInvalidNumber) {
			t.Errorf("%s: expected ErrInvalidNumber, got %v", name, err)
		}
	}
}

func TestReport_JSON(t *testing.T) {
	in := baseInput()
	in.SoftCap = "400000"
	r := mustValidate(t, in)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"kind":"warning"`) || !strings.Contains(s, `"code":"soft_cap_too_low"`) {
		t.Errorf("unexpected JSON: %s", s)
	}
	if !strings.Contains(s, `"valid":false`) {
		t.Errorf("expected valid=false in %s", s)
	}
}
