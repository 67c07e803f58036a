// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from free-form
// strings (as found in uploaded CSV files) and rendering them back.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols are stripped before parsing an amount.
var currencySymbols = []string{"$", "€", "£"}

// ParseAmount converts a user supplied amount to an exact decimal.
//
// Currency symbols, spaces and thousands separators (",") are removed before
// parsing; the decimal separator is always ".". A leading sign is allowed.
//
// Examples:
//
//	ParseAmount("$4.50")     -> 4.50, nil
//	ParseAmount("€1,234.5")  -> 1234.5, nil
//	ParseAmount("-12")       -> -12, nil
//	ParseAmount("abc")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// FormatAmount renders d with at least two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}
