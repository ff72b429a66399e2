package utils

import "testing"

func TestFormatRand(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{4000, "40.00"},
		{38000, "380.00"},
		{12345, "123.45"},
		{-150, "-1.50"},
	}
	for _, tc := range cases {
		if got := FormatRand(tc.cents); got != tc.want {
			t.Errorf("FormatRand(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
	if got := FormatZAR(4000); got != "R40.00" {
		t.Errorf("FormatZAR(4000) = %q", got)
	}
}

func TestParseRandToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"380.00", 38000},
		{"R380.00", 38000},
		{"380", 38000},
		{"0.5", 50},
		{" 123.45 ", 12345},
		{"-1.50", -150},
	}
	for _, tc := range cases {
		got, err := ParseRandToCents(tc.in)
		if err != nil {
			t.Errorf("ParseRandToCents(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRandToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if _, err := ParseRandToCents("abc"); err == nil {
		t.Error("ParseRandToCents should reject non-numeric input")
	}
	if _, err := ParseRandToCents(""); err == nil {
		t.Error("ParseRandToCents should reject empty input")
	}
}
