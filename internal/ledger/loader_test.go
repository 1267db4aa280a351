package ledger

import (
	"testing"

	"primanota/internal/core"
	"primanota/internal/sheets"
)

func record(date, causale, centro string, importo any, provincia string) sheets.Record {
	return sheets.Record{
		"data":            date,
		"Causale":         causale,
		"Centro di Costo": centro,
		"Importo":         importo,
		"Provincia":       provincia,
	}
}

func TestNormalizeBasicRows(t *testing.T) {
	records := []sheets.Record{
		record("2024-01-05", "Donazione", "Pisa", "100,00", "Pisa"),
		record("2024-01-10", "Spesa", "Pisa", "-40,00", "Pisa"),
	}
	txs, stats := Normalize(records, core.UserContext{Role: core.RoleAdmin}, Options{})
	if len(txs) != 2 || stats.Loaded != 2 {
		t.Fatalf("loaded %d rows (stats %+v), want 2", len(txs), stats)
	}
	if txs[0].Amount.Cents != 10000 || txs[1].Amount.Cents != -4000 {
		t.Fatalf("amounts = %d, %d", txs[0].Amount.Cents, txs[1].Amount.Cents)
	}
	if txs[0].YearMonth() != "2024-01" {
		t.Fatalf("year-month = %q", txs[0].YearMonth())
	}
}

func TestNormalizeDropsInvalidDates(t *testing.T) {
	records := []sheets.Record{
		record("", "Donazione", "Pisa", "100,00", ""),
		record("not a date", "Spesa", "Pisa", "-40,00", ""),
		record("2024-02-01", "Quota", "Siena", "25,00", ""),
	}
	txs, stats := Normalize(records, core.UserContext{Role: core.RoleAdmin}, Options{})
	if len(txs) != 1 || stats.InvalidDates != 2 {
		t.Fatalf("got %d rows, %d invalid dates; want 1 and 2", len(txs), stats.InvalidDates)
	}
	if txs[0].Reason != "Quota" {
		t.Fatalf("surviving row reason = %q", txs[0].Reason)
	}
}

func TestNormalizeUnparseableAmountPolicies(t *testing.T) {
	records := []sheets.Record{
		record("2024-01-05", "Donazione", "Pisa", "centoventi", ""),
		record("2024-01-06", "Spesa", "Pisa", "-40,00", ""),
	}

	// Default: coerce to zero, row kept.
	txs, stats := Normalize(records, core.UserContext{Role: core.RoleAdmin}, Options{})
	if len(txs) != 2 || stats.UnparseableAmounts != 1 {
		t.Fatalf("coerce mode: %d rows, stats %+v", len(txs), stats)
	}
	if txs[0].Amount.Cents != 0 {
		t.Fatalf("coerced amount = %d, want 0", txs[0].Amount.Cents)
	}

	// Strict: drop the row like an invalid date.
	txs, stats = Normalize(records, core.UserContext{Role: core.RoleAdmin}, Options{UnparseableAmounts: DropRow})
	if len(txs) != 1 || stats.UnparseableAmounts != 1 {
		t.Fatalf("drop mode: %d rows, stats %+v", len(txs), stats)
	}
	if txs[0].Reason != "Spesa" {
		t.Fatalf("surviving row reason = %q", txs[0].Reason)
	}
}

func TestNormalizeTreasurerScoping(t *testing.T) {
	records := []sheets.Record{
		record("2024-01-05", "Donazione", "Siena", "100,00", "Siena"),
		record("2024-01-06", "Spesa", "Firenze", "-10,00", "Firenze"),
		record("2024-01-07", "Quota", "Pisa", "25,00", "Pisa"),
		record("2024-01-08", "Donazione", "Siena", "50,00", "Siena"),
	}

	treasurer := core.UserContext{Role: core.RoleTreasurer, Province: "Siena"}
	txs, stats := Normalize(records, treasurer, Options{})
	if len(txs) != 2 || stats.OutOfScope != 2 {
		t.Fatalf("treasurer sees %d rows (stats %+v), want 2", len(txs), stats)
	}
	for _, tx := range txs {
		if tx.Province != "Siena" {
			t.Fatalf("treasurer leaked row from %q", tx.Province)
		}
	}

	// Unrestricted roles see everything.
	for _, role := range []core.Role{core.RoleAdmin, core.RoleSupervisor, core.RoleReader} {
		txs, _ := Normalize(records, core.UserContext{Role: role}, Options{})
		if len(txs) != 4 {
			t.Fatalf("role %s sees %d rows, want 4", role, len(txs))
		}
	}
}

func TestNormalizeTrimsHeadersAndSynthesizesProvince(t *testing.T) {
	records := []sheets.Record{
		{
			" data ":             "2024-03-01",
			"Causale ":           "Donazione",
			" Centro di Costo":   "Siena",
			"Importo":            "1.234,56 €",
			"Descrizione":        "lascito",
			// no Provincia column at all
		},
	}
	txs, _ := Normalize(records, core.UserContext{Role: core.RoleAdmin}, Options{})
	if len(txs) != 1 {
		t.Fatalf("got %d rows, want 1", len(txs))
	}
	if txs[0].Amount.Cents != 123456 {
		t.Fatalf("amount = %d, want 123456", txs[0].Amount.Cents)
	}
	if txs[0].Province != "" {
		t.Fatalf("province = %q, want synthesized empty", txs[0].Province)
	}
}

func TestNormalizeNumericAmountPassThrough(t *testing.T) {
	records := []sheets.Record{
		record("2024-01-05", "Donazione", "Pisa", 1234.56, ""),
	}
	txs, _ := Normalize(records, core.UserContext{Role: core.RoleAdmin}, Options{})
	if len(txs) != 1 || txs[0].Amount.Cents != 123456 {
		t.Fatalf("numeric pass-through failed: %+v", txs)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	txs, stats := Normalize(nil, core.UserContext{Role: core.RoleReader}, Options{})
	if len(txs) != 0 || stats.Loaded != 0 {
		t.Fatalf("empty input produced %d rows", len(txs))
	}
}
