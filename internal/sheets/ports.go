package sheets

import (
	"context"

	"primanota/internal/core"
)

// Record is one raw spreadsheet row, keyed by column header. Values keep
// whatever type the source hands back (string, float64, ...); the ledger
// normalizer owns all decoding.
type Record map[string]any

// References holds the operator-maintained lists from the riferimenti
// worksheet, used to populate the new-movement form.
type References struct {
	Causali     []string
	CostCenters []string
	Casse       []string
}

// Ports for outbound adapters.
type (
	// MovementSource reads every row of the prima nota worksheet.
	// ID identifies the underlying spreadsheet and is the only component
	// of the ledger cache key.
	MovementSource interface {
		ID() string
		Records(ctx context.Context) ([]Record, error)
	}

	// MovementWriter appends one movement row to the external store.
	// The write is fire-and-forget: callers re-load to observe it.
	MovementWriter interface {
		Append(ctx context.Context, t core.Transaction) error
	}

	// ReferenceReader lists causali, cost centers and casse.
	ReferenceReader interface {
		References(ctx context.Context) (References, error)
	}
)
