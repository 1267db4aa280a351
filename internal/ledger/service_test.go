package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"primanota/internal/core"
	"primanota/internal/sheets"
	"primanota/internal/sheets/memory"
)

// countingSource wraps a memory store and counts fetches.
type countingSource struct {
	*memory.Store
	calls int
}

func (c *countingSource) Records(ctx context.Context) ([]sheets.Record, error) {
	c.calls++
	return c.Store.Records(ctx)
}

type failingSource struct{}

func (failingSource) ID() string { return "down" }
func (failingSource) Records(context.Context) ([]sheets.Record, error) {
	return nil, errors.New("worksheet not found")
}

type recordingPublisher struct {
	published int
	fail      bool
}

func (p *recordingPublisher) PublishMovementAppended(context.Context, core.Transaction) error {
	p.published++
	if p.fail {
		return errors.New("broker unreachable")
	}
	return nil
}

func seedStore() *memory.Store {
	return memory.New("sheet-1", []sheets.Record{
		{"data": "2024-01-05", "Causale": "Donazione", "Centro di Costo": "Pisa", "Importo": "100,00", "Provincia": "Pisa"},
		{"data": "2024-01-10", "Causale": "Spesa", "Centro di Costo": "Pisa", "Importo": "-40,00", "Provincia": "Pisa"},
	})
}

func TestLoadMemoizesSnapshot(t *testing.T) {
	src := &countingSource{Store: seedStore()}
	svc := NewService(src, nil, Options{}, time.Minute)
	admin := core.UserContext{Role: core.RoleAdmin}

	for i := 0; i < 3; i++ {
		txs, _, err := svc.Load(context.Background(), admin)
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if len(txs) != 2 {
			t.Fatalf("load %d: %d rows", i, len(txs))
		}
	}
	if src.calls != 1 {
		t.Fatalf("source fetched %d times, want 1", src.calls)
	}

	// The snapshot is shared across roles; scoping happens afterwards.
	treasurer := core.UserContext{Role: core.RoleTreasurer, Province: "Siena"}
	txs, _, err := svc.Load(context.Background(), treasurer)
	if err != nil {
		t.Fatalf("treasurer load: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("treasurer of Siena sees %d Pisa rows", len(txs))
	}
	if src.calls != 1 {
		t.Fatalf("role change triggered refetch: %d calls", src.calls)
	}
}

func TestRefreshInvalidatesSnapshot(t *testing.T) {
	src := &countingSource{Store: seedStore()}
	svc := NewService(src, nil, Options{}, time.Minute)
	admin := core.UserContext{Role: core.RoleAdmin}

	if _, _, err := svc.Load(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	svc.Refresh()
	if _, _, err := svc.Load(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Fatalf("source fetched %d times after refresh, want 2", src.calls)
	}
}

func TestLoadSourceUnavailable(t *testing.T) {
	svc := NewService(failingSource{}, nil, Options{}, time.Minute)
	_, _, err := svc.Load(context.Background(), core.UserContext{Role: core.RoleAdmin})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestAppendRoleGate(t *testing.T) {
	store := seedStore()
	svc := NewService(store, store, Options{}, time.Minute)
	tx := core.Transaction{
		Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   core.Money{Cents: 2500},
		Category: "Siena",
		Reason:   "Quota associativa",
	}

	err := svc.Append(context.Background(), core.UserContext{Role: core.RoleReader}, tx)
	if !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("reader append err = %v, want ErrNotAllowed", err)
	}

	if err := svc.Append(context.Background(), core.UserContext{Role: core.RoleTreasurer, Province: "Siena"}, tx); err != nil {
		t.Fatalf("treasurer append: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("store has %d rows, want 3", store.Len())
	}
}

func TestAppendInvalidatesSnapshotAndPublishes(t *testing.T) {
	store := seedStore()
	src := &countingSource{Store: store}
	pub := &recordingPublisher{}
	svc := NewService(src, store, Options{}, time.Minute).WithPublisher(pub)
	admin := core.UserContext{Role: core.RoleAdmin}

	if _, _, err := svc.Load(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	tx := core.Transaction{
		Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   core.Money{Cents: 2500},
		Category: "Siena",
		Reason:   "Quota associativa",
	}
	if err := svc.Append(context.Background(), admin, tx); err != nil {
		t.Fatal(err)
	}
	if pub.published != 1 {
		t.Fatalf("published %d events, want 1", pub.published)
	}

	txs, _, err := svc.Load(context.Background(), admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Fatalf("reloaded ledger has %d rows, want 3", len(txs))
	}
	if src.calls != 2 {
		t.Fatalf("source fetched %d times, want 2", src.calls)
	}
}

func TestAppendPublishFailureIsNotFatal(t *testing.T) {
	store := seedStore()
	pub := &recordingPublisher{fail: true}
	svc := NewService(store, store, Options{}, time.Minute).WithPublisher(pub)

	tx := core.Transaction{
		Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   core.Money{Cents: 2500},
		Category: "Siena",
		Reason:   "Quota associativa",
	}
	if err := svc.Append(context.Background(), core.UserContext{Role: core.RoleAdmin}, tx); err != nil {
		t.Fatalf("append with failing publisher: %v", err)
	}
}

func TestAppendWriteFailed(t *testing.T) {
	store := seedStore()
	svc := NewService(store, nil, Options{}, time.Minute)
	tx := core.Transaction{
		Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:   core.Money{Cents: 2500},
		Category: "Siena",
		Reason:   "Quota",
	}
	err := svc.Append(context.Background(), core.UserContext{Role: core.RoleAdmin}, tx)
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("err = %v, want ErrWriteFailed", err)
	}
}
