package report

import "primanota/internal/core"

// Status classifies a reconciliation outcome.
type Status string

const (
	StatusReconciled  Status = "reconciled"
	StatusDiscrepancy Status = "discrepancy"
)

// reconcileToleranceCents is the accepted gap between the ledger balance
// and the recorded account balances: one euro, absolute.
const reconcileToleranceCents = 100

// Reconciliation compares the ledger-derived net balance against the
// operator-entered account balances. A discrepancy is a warning, never
// fatal: the numbers are always reported.
type Reconciliation struct {
	Total  core.Money // sum of recorded balances
	Delta  core.Money // ledger net - Total
	Status Status
}

// Reconcile is a read-only comparison; neither side is mutated.
func Reconcile(net core.Money, balances []core.AccountBalance) Reconciliation {
	var total core.Money
	for _, b := range balances {
		total.Cents += b.Balance.Cents
	}
	delta := core.Money{Cents: net.Cents - total.Cents}

	status := StatusReconciled
	if delta.Abs().Cents > reconcileToleranceCents {
		status = StatusDiscrepancy
	}
	return Reconciliation{Total: total, Delta: delta, Status: status}
}
