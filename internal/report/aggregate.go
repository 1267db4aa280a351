// Package report computes the aggregate views over a normalized ledger:
// period totals, monthly series, the cash-basis statement sections, the
// donation register and the reconciliation against recorded balances.
//
// Grouping keys are matched as exact strings, case included. Earlier
// revisions of the reports behaved this way and changing it would silently
// alter historical totals, so it stays.
package report

import (
	"strings"

	"primanota/internal/core"
)

// Totals summarizes one period. Outflow keeps its negative sign so that
// Net = Inflow + Outflow always holds; render a magnitude at the edge.
type Totals struct {
	Inflow  core.Money
	Outflow core.Money
	Net     core.Money
}

// MonthFlow is the inflow/outflow pair for one year-month.
type MonthFlow struct {
	Month   string // "2024-01"
	Inflow  core.Money
	Outflow core.Money
}

// CategoryNet is the signed net amount for one cost center.
type CategoryNet struct {
	Category string
	Net      core.Money
}

// Series carries the chartable breakdowns of the whole ledger.
type Series struct {
	ByMonth    []MonthFlow
	ByCategory []CategoryNet
}

// allCategories reports whether the filter selects every cost center.
func allCategories(filter string) bool {
	f := strings.TrimSpace(filter)
	return f == "" || strings.EqualFold(f, "all") || strings.EqualFold(f, "tutti")
}

// PeriodTotals sums the ledger rows matching the year-month (exact string,
// "2006-01" form) and the optional cost-center filter.
func PeriodTotals(ledger []core.Transaction, yearMonth, category string) Totals {
	var t Totals
	all := allCategories(category)
	for _, tx := range ledger {
		if tx.YearMonth() != yearMonth {
			continue
		}
		if !all && tx.Category != category {
			continue
		}
		if tx.Amount.Cents > 0 {
			t.Inflow.Cents += tx.Amount.Cents
		} else {
			t.Outflow.Cents += tx.Amount.Cents
		}
	}
	t.Net.Cents = t.Inflow.Cents + t.Outflow.Cents
	return t
}

// NetBalance is the signed sum of every row in the ledger.
func NetBalance(ledger []core.Transaction) core.Money {
	var net core.Money
	for _, tx := range ledger {
		net.Cents += tx.Amount.Cents
	}
	return net
}

// MonthlySeries groups the ledger by year-month (inflow and outflow summed
// separately) and by cost center (signed net). First-seen order is
// preserved in both breakdowns.
func MonthlySeries(ledger []core.Transaction) Series {
	var s Series
	monthIdx := map[string]int{}
	catIdx := map[string]int{}

	for _, tx := range ledger {
		ym := tx.YearMonth()
		i, ok := monthIdx[ym]
		if !ok {
			i = len(s.ByMonth)
			monthIdx[ym] = i
			s.ByMonth = append(s.ByMonth, MonthFlow{Month: ym})
		}
		if tx.Amount.Cents > 0 {
			s.ByMonth[i].Inflow.Cents += tx.Amount.Cents
		} else {
			s.ByMonth[i].Outflow.Cents += tx.Amount.Cents
		}

		j, ok := catIdx[tx.Category]
		if !ok {
			j = len(s.ByCategory)
			catIdx[tx.Category] = j
			s.ByCategory = append(s.ByCategory, CategoryNet{Category: tx.Category})
		}
		s.ByCategory[j].Net.Cents += tx.Amount.Cents
	}
	return s
}
