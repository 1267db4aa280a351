// Package ledger turns raw spreadsheet records into the canonical,
// role-scoped transaction collection every report is computed from.
package ledger

import (
	"fmt"
	"strings"

	"primanota/internal/core"
	"primanota/internal/sheets"
)

// Canonical prima nota column names, after header trimming.
const (
	colDate        = "data"
	colReason      = "Causale"
	colCategory    = "Centro di Costo"
	colAmount      = "Importo"
	colDescription = "Descrizione"
	colCassa       = "Cassa"
	colNotes       = "Note"
	colProvince    = "Provincia"
)

// AmountPolicy decides what happens to a row whose amount cell does not
// parse. Observed source revisions disagree, so both behaviors are kept.
type AmountPolicy int

const (
	// CoerceZero keeps the row with a zero amount (latest observed
	// behavior, the default).
	CoerceZero AmountPolicy = iota
	// DropRow excludes the row entirely, like an invalid date.
	DropRow
)

// Options configures the normalizer.
type Options struct {
	UnparseableAmounts AmountPolicy
}

// Stats counts what the normalizer dropped or coerced. Per-row problems
// are recovered locally and never abort a load.
type Stats struct {
	Loaded             int
	InvalidDates       int
	UnparseableAmounts int
	OutOfScope         int
}

// Normalize decodes raw records into transactions, in source order.
//
// Rows with an unparseable or missing date are excluded. Unparseable
// amounts follow the configured policy. A missing Provincia column is
// synthesized as empty. Treasurers only retain rows matching their
// province; every other role sees the full ledger.
func Normalize(records []sheets.Record, user core.UserContext, opts Options) ([]core.Transaction, Stats) {
	var stats Stats
	scope := user.ScopedProvince()
	out := make([]core.Transaction, 0, len(records))

	for _, rec := range records {
		row := trimKeys(rec)

		date, err := core.ParseDate(cellString(row[colDate]))
		if err != nil {
			stats.InvalidDates++
			continue
		}

		amount, err := core.ParseCell(row[colAmount])
		if err != nil {
			stats.UnparseableAmounts++
			if opts.UnparseableAmounts == DropRow {
				continue
			}
			amount = core.Money{}
		}

		t := core.Transaction{
			Date:          date,
			Amount:        amount,
			Category:      cellString(row[colCategory]),
			Reason:        cellString(row[colReason]),
			Description:   cellString(row[colDescription]),
			PaymentMethod: cellString(row[colCassa]),
			Notes:         cellString(row[colNotes]),
			Province:      cellString(row[colProvince]),
		}

		if scope != "" && t.Province != scope {
			stats.OutOfScope++
			continue
		}

		out = append(out, t)
		stats.Loaded++
	}
	return out, stats
}

// trimKeys copies a record with surrounding whitespace stripped from the
// column names. Header drift across spreadsheet edits is expected.
func trimKeys(rec sheets.Record) sheets.Record {
	out := make(sheets.Record, len(rec))
	for k, v := range rec {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
