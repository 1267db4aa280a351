// Package core provides the normalized ledger domain: money and date
// parsing, transaction rows, and user context.
//
// This file contains the amount parser, the single place in the codebase
// that understands the European number formats found in the source
// spreadsheet ("1.234,56 €", "12,50", plain numerics).
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Money is a signed amount in euro cents. Aggregation always happens on
// cents; rounding to two fraction digits occurs only when parsing, never
// between aggregation steps.
type Money struct {
	Cents int64
}

// Euros returns the euro value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// Neg reports whether the amount is an outflow.
func (m Money) Neg() bool { return m.Cents < 0 }

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// ParseAmount converts a textual monetary value into cents.
//
// It accepts European formatting: an optional euro sign, "." as thousands
// separator and "," as decimal separator, as well as plain dot-decimal
// values. A "." is treated as a thousands separator only when it is
// followed by exactly three digits that terminate the token or precede
// another separator; "1234.56" therefore stays 1234.56 and never becomes
// 123456. Half-up rounding is applied on the third fractional digit.
//
// Examples:
//
//	ParseAmount("1.234,56 €") -> 123456 cents
//	ParseAmount("12,50")      -> 1250 cents
//	ParseAmount("-40,00")     -> -4000 cents
//	ParseAmount("1234.56")    -> 123456 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.Trim(s, "€"))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = strings.TrimSpace(s[1:])
	case '+':
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return Money{}, ErrInvalidAmount
	}

	s = stripThousandsDots(s)
	s = strings.ReplaceAll(s, ",", ".")

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// stripThousandsDots removes every "." acting as a thousands separator.
// A dot qualifies only when followed by exactly three digits and then
// end-of-string or another separator.
func stripThousandsDots(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			b.WriteByte(s[i])
			continue
		}
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			if i+4 == len(s) || s[i+4] == '.' || s[i+4] == ',' {
				continue // thousands separator, drop it
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParseCell converts one raw spreadsheet cell into cents. Cells that are
// already numeric pass through as euro values (the clean-source fast path);
// textual cells go through ParseAmount.
func ParseCell(v any) (Money, error) {
	switch x := v.(type) {
	case nil:
		return Money{}, ErrInvalidAmount
	case Money:
		return x, nil
	case float64:
		return eurosToCents(x), nil
	case float32:
		return eurosToCents(float64(x)), nil
	case int:
		return Money{Cents: int64(x) * 100}, nil
	case int64:
		return Money{Cents: x * 100}, nil
	case json.Number:
		return ParseAmount(x.String())
	case string:
		return ParseAmount(x)
	default:
		return ParseAmount(fmt.Sprint(v))
	}
}

func eurosToCents(v float64) Money {
	if v < 0 {
		return Money{Cents: -int64(-v*100 + 0.5)}
	}
	return Money{Cents: int64(v*100 + 0.5)}
}

// FormatEuro renders an amount in the Italian convention used across the
// reports: thousands separated by "." and a decimal comma, e.g. "1.234,56 €".
// Formatting then reparsing recovers the original cents exactly.
func FormatEuro(m Money) string {
	sign := ""
	if m.Neg() {
		sign = "-"
	}
	cents := m.Abs().Cents
	intPart := strconv.FormatInt(cents/100, 10)
	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(intPart[i : i+3])
	}
	return fmt.Sprintf("%s%s,%02d €", sign, grouped.String(), cents%100)
}
