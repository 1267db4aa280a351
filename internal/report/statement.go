package report

import "primanota/internal/core"

// ReasonSum is one line of a statement section: a causale and its total.
type ReasonSum struct {
	Reason string
	Amount core.Money
}

// Statement is the cash-basis rendiconto: Section A groups the inflows by
// causale, Section B the outflows (as magnitudes), plus the grand totals
// and their difference.
type Statement struct {
	SectionA []ReasonSum
	SectionB []ReasonSum
	TotalA   core.Money
	TotalB   core.Money
	Balance  core.Money // TotalA - TotalB
}

// StatementSections builds the rendiconto over the whole ledger. Line
// order within each section follows first appearance in the ledger. An
// empty ledger yields empty sections, not an error.
func StatementSections(ledger []core.Transaction) Statement {
	var st Statement
	aIdx := map[string]int{}
	bIdx := map[string]int{}

	for _, tx := range ledger {
		switch {
		case tx.Amount.Cents > 0:
			i, ok := aIdx[tx.Reason]
			if !ok {
				i = len(st.SectionA)
				aIdx[tx.Reason] = i
				st.SectionA = append(st.SectionA, ReasonSum{Reason: tx.Reason})
			}
			st.SectionA[i].Amount.Cents += tx.Amount.Cents
			st.TotalA.Cents += tx.Amount.Cents
		case tx.Amount.Cents < 0:
			i, ok := bIdx[tx.Reason]
			if !ok {
				i = len(st.SectionB)
				bIdx[tx.Reason] = i
				st.SectionB = append(st.SectionB, ReasonSum{Reason: tx.Reason})
			}
			st.SectionB[i].Amount.Cents += -tx.Amount.Cents
			st.TotalB.Cents += -tx.Amount.Cents
		}
		// zero-amount rows (coerced unparseables) influence no section
	}
	st.Balance.Cents = st.TotalA.Cents - st.TotalB.Cents
	return st
}

// DonationReport is the donation register: every movement whose causale
// matches "donazione", the running total, and the most recent entry.
type DonationReport struct {
	Entries []core.Transaction
	Total   core.Money
	Last    *core.Transaction
}

// Donations filters the ledger down to donation movements, preserving
// insertion order. Last points at the latest entry by insertion order,
// nil when no donation exists.
func Donations(ledger []core.Transaction) DonationReport {
	var rep DonationReport
	for _, tx := range ledger {
		if !tx.IsDonation() {
			continue
		}
		rep.Entries = append(rep.Entries, tx)
		rep.Total.Cents += tx.Amount.Cents
	}
	if n := len(rep.Entries); n > 0 {
		rep.Last = &rep.Entries[n-1]
	}
	return rep
}
