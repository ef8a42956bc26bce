package bps

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
)

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		text string
		want Rate
	}{
		{"80", 8000},
		{"80.5", 8050},
		{"80.55", 8055},
		{"80.559", 8055}, // truncated
		{"0", 0},
		{"100", 10000},
		{"0.01", 1},
		{"5", 500},
	}
	for _, tt := range tests {
		got, err := ParsePercentage(tt.text)
		if err != nil {
			t.Errorf("ParsePercentage(%q): unexpected error: %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePercentage(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParsePercentage_Rejects(t *testing.T) {
	if _, err := ParsePercentage("-5"); !errors.Is(err, fixedpoint.ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber for negative, got %v", err)
	}
	if _, err := ParsePercentage("eighty"); !errors.Is(err, fixedpoint.ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber for text, got %v", err)
	}
	if _, err := ParsePercentage("99999999999"); !errors.Is(err, fixedpoint.ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber for oversize, got %v", err)
	}
	if _, err := ParsePercentage(" "); !errors.Is(err, fixedpoint.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestApplyRate(t *testing.T) {
	tests := []struct {
		amount int64
		rate   Rate
		want   int64
	}{
		{1_000_000, 500, 50_000},
		{1_000_000, 10000, 1_000_000},
		{1_000_000, 0, 0},
		{999, 3333, 332}, // floor(3329667/10000)
		{1, 9999, 0},
	}
	for _, tt := range tests {
		got := ApplyRate(big.NewInt(tt.amount), tt.rate)
		if got.Int64() != tt.want {
			t.Errorf("ApplyRate(%d, %d) = %s, want %d", tt.amount, tt.rate, got, tt.want)
		}
	}
}

func TestApplyRate_LargeAmount(t *testing.T) {
	// 10^9 tokens at 18 decimals is far beyond 64 bits.
	amount := new(big.Int).Mul(big.NewInt(1_000_000_000), fixedpoint.Pow10(18))
	got := ApplyRate(amount, 8000)
	want := new(big.Int).Mul(big.NewInt(800_000_000), fixedpoint.Pow10(18))
	if got.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestApplyRate_Bounded(t *testing.T) {
	amounts := []int64{0, 1, 7, 9999, 10000, 123456789, 1 << 62}
	rates := []Rate{0, 1, 50, 333, 5000, 9999, 10000}
	for _, a := range amounts {
		for _, r := range rates {
			amount := big.NewInt(a)
			got := ApplyRate(amount, r)
			if got.Sign() < 0 || got.Cmp(amount) > 0 {
				t.Errorf("ApplyRate(%d, %d) = %s outside [0, amount]", a, r, got)
			}
		}
	}
}

func TestApplyRateOver_ZeroDenominator(t *testing.T) {
	_, err := ApplyRateOver(big.NewInt(100), 5, 0)
	if !errors.Is(err, fixedpoint.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestCheckRange(t *testing.T) {
	if err := CheckRange(8000, 7000, 10000); err != nil {
		t.Errorf("expected 80%% within range, got %v", err)
	}
	if err := CheckRange(6999, 7000, 10000); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestRate_String(t *testing.T) {
	if got := Rate(8050).String(); got != "80.5%" {
		t.Errorf("expected 80.5%%, got %q", got)
	}
	if got := Rate(500).String(); got != "5%" {
		t.Errorf("expected 5%%, got %q", got)
	}
	if !Rate(10000).Valid() || Rate(10001).Valid() {
		t.Error("Valid should accept 10000 and reject 10001")
	}
}
