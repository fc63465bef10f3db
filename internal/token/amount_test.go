package token

import (
	"errors"
	"math/big"
	"testing"
)

func TestToDisplay(t *testing.T) {
	cases := []struct {
		name     string
		raw      *big.Int
		decimals int32
		want     string
	}{
		{"nil treated as zero", nil, 18, "0"},
		{"zero", big.NewInt(0), 6, "0"},
		{"whole units", big.NewInt(1_500_000), 6, "1.5"},
		{"sub-unit dust", big.NewInt(1), 18, "0.000000000000000001"},
		{"no decimals", big.NewInt(42), 0, "42"},
		{"negative passes through", big.NewInt(-2_000_000), 6, "-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToDisplay(tc.raw, tc.decimals); got != tc.want {
				t.Fatalf("ToDisplay(%v, %d) = %q, want %q", tc.raw, tc.decimals, got, tc.want)
			}
		})
	}
}

func TestToRaw(t *testing.T) {
	got, err := ToRaw("1.5", 6)
	if err != nil {
		t.Fatalf("ToRaw: %v", err)
	}
	if got.Cmp(big.NewInt(1_500_000)) != 0 {
		t.Fatalf("ToRaw(1.5, 6) = %s, want 1500000", got)
	}

	got, err = ToRaw("  0.000001 ", 6)
	if err != nil {
		t.Fatalf("ToRaw with spaces: %v", err)
	}
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("ToRaw(0.000001, 6) = %s, want 1", got)
	}
}

func TestToRawRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		display string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"not a number", "abc"},
		{"negative", "-1"},
		{"too many decimals", "0.0000001"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ToRaw(tc.display, 6); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("ToRaw(%q) err = %v, want ErrInvalidAmount", tc.display, err)
			}
		})
	}
}

func TestToRawRoundTrip(t *testing.T) {
	raw, err := ToRaw("1234.56789", 8)
	if err != nil {
		t.Fatalf("ToRaw: %v", err)
	}
	if got := ToDisplay(raw, 8); got != "1234.56789" {
		t.Fatalf("round trip = %q, want 1234.56789", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry([]Token{
		{Address: "0xAbC0000000000000000000000000000000000001", Symbol: "pathUSD", Decimals: 6},
	})

	tok := registry.Lookup("0xabc0000000000000000000000000000000000001")
	if tok.Symbol != "pathUSD" {
		t.Fatalf("lookup should be case-insensitive, got %q", tok.Symbol)
	}

	unknown := registry.Lookup("0xdead000000000000000000000000000000000000")
	if unknown.Symbol != Unknown.Symbol {
		t.Fatalf("unregistered address should resolve to fallback, got %q", unknown.Symbol)
	}
	if unknown.Address != "0xdead000000000000000000000000000000000000" {
		t.Fatalf("fallback should preserve the queried address, got %q", unknown.Address)
	}
	if unknown.Decimals != 18 {
		t.Fatalf("fallback decimals = %d, want 18", unknown.Decimals)
	}
}
