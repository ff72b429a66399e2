package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRand renders an amount of cents as "123.45" (two decimals, no symbol).
// PayFast requires amounts in exactly this shape.
func FormatRand(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatZAR renders an amount of cents with the currency prefix for documents.
func FormatZAR(cents int64) string {
	return "R" + FormatRand(cents)
}

// ParseRandToCents parses "123.45", "R123.45" or "123" into cents.
func ParseRandToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToUpper(s), "R")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid amount")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole := s
	frac := "0"
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}
