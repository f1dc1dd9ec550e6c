package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"$25", 2500, true},
		{"$1,234.56", 123456, true},
		{" $ 12.50 ", 1250, true},
		{"0.01", 1, true},
		{"24.995", 2500, true}, // half-up rounding
		{"24.994", 2499, true},
		{"", 0, true}, // blank cost cell on a pending row
		{"0", 0, true},
		{"-1", 0, false},
		{"$-5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"$", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{2500, "$25.00"},
		{123456, "$1234.56"},
		{-150, "-$1.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("%d cents: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}
