// Package memory provides an in-memory movement store used as the default
// backend for local development and as the test double for the ledger.
package memory

import (
	"context"
	"fmt"
	"sync"

	"primanota/internal/core"
	ports "primanota/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	id      string
	records []ports.Record
	refs    ports.References
}

var (
	_ ports.MovementSource  = (*Store)(nil)
	_ ports.MovementWriter  = (*Store)(nil)
	_ ports.ReferenceReader = (*Store)(nil)
)

// New creates a store seeded with the given raw records.
func New(id string, records []ports.Record) *Store {
	return &Store{
		id:      id,
		records: append([]ports.Record(nil), records...),
		refs: ports.References{
			Causali:     []string{"Donazione", "Quota associativa", "Spesa", "Rimborso"},
			CostCenters: []string{"Siena", "Firenze", "Pisa"},
			Casse:       []string{"Banca", "Contanti"},
		},
	}
}

// ID implements ports.MovementSource.
func (s *Store) ID() string { return s.id }

// Records returns a copy of the stored raw rows, insertion order preserved.
func (s *Store) Records(_ context.Context) ([]ports.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Record(nil), s.records...), nil
}

// Append stores the movement as a raw record using the canonical prima
// nota column names, mirroring what the spreadsheet adapter writes.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, ports.Record{
		"data":            t.Date.Format("2006-01-02"),
		"Causale":         t.Reason,
		"Centro di Costo": t.Category,
		"Importo":         t.Amount.Euros(),
		"Descrizione":     t.Description,
		"Cassa":           t.PaymentMethod,
		"Note":            t.Notes,
		"Provincia":       t.Province,
	})
	return nil
}

// References implements ports.ReferenceReader.
func (s *Store) References(_ context.Context) (ports.References, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs, nil
}

// SetReferences replaces the reference lists (test seeding).
func (s *Store) SetReferences(refs ports.References) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = refs
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) String() string {
	return fmt.Sprintf("memory store %q (%d rows)", s.id, s.Len())
}
