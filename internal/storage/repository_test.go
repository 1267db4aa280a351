package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"primanota/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "primanota.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBalancesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	balances := []core.AccountBalance{
		{Account: "Banca", Balance: core.Money{Cents: 10000000}},
		{Account: "Contanti", Balance: core.Money{Cents: 1219692}},
	}
	if err := repo.UpsertBalances(ctx, 2024, balances); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetBalances(ctx, 2024)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d balances, want 2", len(got))
	}
	if got[0].Account != "Banca" || got[0].Balance.Cents != 10000000 {
		t.Fatalf("first balance = %+v", got[0])
	}

	// Re-entering a year replaces the previous set.
	if err := repo.UpsertBalances(ctx, 2024, balances[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = repo.GetBalances(ctx, 2024)
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d balances after replace, want 1", len(got))
	}

	// Other years are untouched and empty.
	got, err = repo.GetBalances(ctx, 2023)
	if err != nil {
		t.Fatalf("get 2023: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("2023 has %d balances, want 0", len(got))
	}
}

func TestMirrorMovements(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := core.Transaction{
		Date:     time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:   core.Money{Cents: 10000},
		Reason:   "Donazione",
		Category: "Pisa",
		Province: "Pisa",
	}
	second := core.Transaction{
		Date:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Amount:        core.Money{Cents: -4000},
		Reason:        "Spesa",
		Category:      "Pisa",
		PaymentMethod: "Contanti",
		Notes:         "cancelleria",
	}

	if _, err := repo.InsertMirrorMovement(ctx, first); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	id, err := repo.InsertMirrorMovement(ctx, second)
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if id != 2 {
		t.Fatalf("second id = %d, want 2", id)
	}

	n, err := repo.CountMirrorMovements(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v; want 2", n, err)
	}

	list, err := repo.ListMirrorMovements(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d movements, want 2", len(list))
	}
	// Most recent first.
	if list[0].Transaction.Reason != "Spesa" || list[0].Transaction.Amount.Cents != -4000 {
		t.Fatalf("newest mirrored movement = %+v", list[0].Transaction)
	}
	if !list[1].Transaction.Date.Equal(first.Date) {
		t.Fatalf("date round-trip failed: %v", list[1].Transaction.Date)
	}
}
