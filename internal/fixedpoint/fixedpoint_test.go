package fixedpoint

import (
	"errors"
	"math/big"
	"testing"
)

func bi(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big int literal " + s)
	}
	return v
}

// --- ParseAmount ---

func TestParseAmount_Valid(t *testing.T) {
	tests := []struct {
		text     string
		decimals uint8
		want     string
	}{
		{"100.5", 18, "100500000000000000000"},
		{"1", 6, "1000000"},
		{"0", 18, "0"},
		{"0.000001", 6, "1"},
		{"0.0000019", 6, "1"}, // truncated, not rounded
		{"1.999999999", 0, "1"},
		{"42", 0, "42"},
		{".5", 2, "50"},
		{"5.", 2, "500"},
		{"  7.25  ", 2, "725"},
		{"123456789012345678901234567890", 18, "123456789012345678901234567890000000000000000000"},
		{"0.123456789012345678999", 18, "123456789012345678"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.text, tt.decimals)
		if err != nil {
			t.Errorf("ParseAmount(%q, %d): unexpected error: %v", tt.text, tt.decimals, err)
			continue
		}
		if got.Value.String() != tt.want {
			t.Errorf("ParseAmount(%q, %d) = %s, want %s", tt.text, tt.decimals, got.Value, tt.want)
		}
		if got.Decimals != tt.decimals {
			t.Errorf("ParseAmount(%q) decimals = %d, want %d", tt.text, got.Decimals, tt.decimals)
		}
	}
}

func TestParseAmount_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := ParseAmount(text, 18)
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("ParseAmount(%q): expected ErrEmpty, got %v", text, err)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, text := range []string{
		"-1",
		"+1",
		"abc",
		"1.2.3",
		"1e18",
		"1,000",
		".",
		"0x10",
		"1 000",
		"NaN",
	} {
		_, err := ParseAmount(text, 18)
		if !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("ParseAmount(%q): expected ErrInvalidNumber, got %v", text, err)
		}
	}
}

// --- FormatAmount ---

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value    string
		decimals uint8
		max      int
		want     string
	}{
		{"100500000000000000000", 18, 6, "100.5"},
		{"1000000", 6, 6, "1"},
		{"0", 18, 6, "0"},
		{"1", 18, 6, "0"},
		{"1", 18, -1, "0.000000000000000001"},
		{"1234567", 6, 6, "1.234567"},
		{"1239999", 6, 2, "1.23"}, // truncated, not rounded
		{"1200000", 6, 6, "1.2"},
		{"42", 0, 6, "42"},
		{"-1500000", 6, 6, "-1.5"},
	}
	for _, tt := range tests {
		got := FormatAmount(bi(tt.value), tt.decimals, tt.max)
		if got != tt.want {
			t.Errorf("FormatAmount(%s, %d, %d) = %q, want %q", tt.value, tt.decimals, tt.max, got, tt.want)
		}
	}
}

func TestFormatAmount_Nil(t *testing.T) {
	if got := FormatAmount(nil, 18, 6); got != "0" {
		t.Errorf("expected 0 for nil amount, got %q", got)
	}
}

func TestParseFormat_RoundTrip(t *testing.T) {
	for _, text := range []string{"100.5", "0.25", "3", "999999.123456"} {
		a, err := ParseAmount(text, 18)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", text, err)
		}
		if got := a.String(); got != text {
			t.Errorf("round trip %q → %q", text, got)
		}
	}
}

// --- Renormalize ---

func TestRenormalize(t *testing.T) {
	tests := []struct {
		value    string
		from, to uint8
		want     string
	}{
		{"1000000", 6, 18, "1000000000000000000"},
		{"1000000000000000000", 18, 6, "1000000"},
		{"1999999999999", 18, 6, "1"}, // floor
		{"5", 6, 6, "5"},
		{"123", 0, 2, "12300"},
	}
	for _, tt := range tests {
		got := Renormalize(bi(tt.value), tt.from, tt.to)
		if got.String() != tt.want {
			t.Errorf("Renormalize(%s, %d, %d) = %s, want %s", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRenormalize_UpThenDownIsLossless(t *testing.T) {
	values := []string{"0", "1", "7", "999999", "123456789012345678901234567"}
	for _, v := range values {
		for d1 := uint8(0); d1 <= 18; d1 += 3 {
			for d2 := d1; d2 <= 24; d2 += 3 {
				a := bi(v)
				back := Renormalize(Renormalize(a, d1, d2), d2, d1)
				if back.Cmp(a) != 0 {
					t.Errorf("up/down %s (%d→%d→%d) = %s", v, d1, d2, d1, back)
				}
			}
		}
	}
}

func TestRenormalize_DownThenUpNeverIncreases(t *testing.T) {
	values := []string{"0", "1", "7", "999999", "123456789012345678901234567"}
	for _, v := range values {
		for d1 := uint8(6); d1 <= 24; d1 += 3 {
			for d2 := uint8(0); d2 < d1; d2 += 3 {
				a := bi(v)
				back := Renormalize(Renormalize(a, d1, d2), d2, d1)
				if back.Cmp(a) > 0 {
					t.Errorf("down/up %s (%d→%d→%d) increased to %s", v, d1, d2, d1, back)
				}
			}
		}
	}
}

func TestRenormalize_DoesNotAlias(t *testing.T) {
	a := big.NewInt(5)
	out := Renormalize(a, 6, 6)
	out.SetInt64(9)
	if a.Int64() != 5 {
		t.Error("Renormalize must return a fresh value")
	}
}

// --- MulDiv ---

func TestMulDiv(t *testing.T) {
	got, err := MulDiv(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int64() != 7 {
		t.Errorf("expected floor(30/4)=7, got %s", got)
	}

	if _, err := MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

// --- Amount ---

func TestAmount_Uint256(t *testing.T) {
	a := NewAmount(bi("1000000000000000000"), 18)
	u, err := a.Uint256()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Dec() != "1000000000000000000" {
		t.Errorf("expected 1e18, got %s", u.Dec())
	}

	tooBig := NewAmount(new(big.Int).Lsh(big.NewInt(1), 256), 18)
	if _, err := tooBig.Uint256(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow for 2^256, got %v", err)
	}

	negative := NewAmount(big.NewInt(-1), 18)
	if _, err := negative.Uint256(); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber for negative, got %v", err)
	}
}

func TestAmount_JSON(t *testing.T) {
	a := NewAmount(bi("100500000000000000000"), 18)
	data, err := a.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"value":"100500000000000000000","decimals":18,"formatted":"100.5"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Amount
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Value.Cmp(a.Value) != 0 || back.Decimals != 18 {
		t.Errorf("unexpected decode: %s/%d", back.Value, back.Decimals)
	}

	if err := back.UnmarshalJSON([]byte(`{"value":"-5","decimals":6}`)); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("expected ErrInvalidNumber for negative value, got %v", err)
	}
}
