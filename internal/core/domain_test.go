package core

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"superadmin", RoleAdmin, true},
		{"Tesoriere", RoleTreasurer, true},
		{"treasurer", RoleTreasurer, true},
		{"supervisor", RoleSupervisor, true},
		{"reader", RoleReader, true},
		{" lettore ", RoleReader, true},
		{"guest", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ParseRole(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		} else if err == nil {
			t.Fatalf("ParseRole(%q) expected error", tc.in)
		}
	}
}

func TestUserContextCapabilities(t *testing.T) {
	admin := UserContext{Role: RoleAdmin}
	treasurer := UserContext{Role: RoleTreasurer, Province: "Siena"}
	reader := UserContext{Role: RoleReader, Province: "Pisa"}
	supervisor := UserContext{Role: RoleSupervisor}

	if !admin.CanAppend() || !treasurer.CanAppend() {
		t.Fatal("admin and treasurer must be able to append movements")
	}
	if reader.CanAppend() || supervisor.CanAppend() {
		t.Fatal("reader and supervisor must not append movements")
	}

	if got := treasurer.ScopedProvince(); got != "Siena" {
		t.Fatalf("treasurer scope = %q, want Siena", got)
	}
	// Unrestricted roles see the full ledger even when a province is set.
	if got := reader.ScopedProvince(); got != "" {
		t.Fatalf("reader scope = %q, want empty", got)
	}
	if got := admin.ScopedProvince(); got != "" {
		t.Fatalf("admin scope = %q, want empty", got)
	}
}

func TestTransactionIsDonation(t *testing.T) {
	cases := []struct {
		reason string
		want   bool
	}{
		{"Donazione", true},
		{"donazione liberale", true},
		{"DONAZIONE 5x1000", true},
		{"Spesa", false},
		{"", false},
	}
	for _, tc := range cases {
		tx := Transaction{Reason: tc.reason}
		if tx.IsDonation() != tc.want {
			t.Fatalf("IsDonation(%q) = %v, want %v", tc.reason, !tc.want, tc.want)
		}
	}
}

func TestTransactionYearMonth(t *testing.T) {
	tx := Transaction{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	if got := tx.YearMonth(); got != "2024-01" {
		t.Fatalf("YearMonth = %q, want 2024-01", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:   Money{Cents: 10000},
		Category: "Pisa",
		Reason:   "Donazione",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid movement rejected: %v", err)
	}

	missingDate := valid
	missingDate.Date = time.Time{}
	if err := missingDate.Validate(); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = Money{}
	if err := zeroAmount.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	noReason := valid
	noReason.Reason = "  "
	if err := noReason.Validate(); err != ErrEmptyReason {
		t.Fatalf("expected ErrEmptyReason, got %v", err)
	}
}
