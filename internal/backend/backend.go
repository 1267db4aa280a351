// Package backend selects and builds the movement store the ledger reads
// from: the Google spreadsheet in production, an in-memory store for
// local development and tests.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"primanota/internal/sheets"
	gsheet "primanota/internal/sheets/google"
	"primanota/internal/sheets/memory"
)

// Backend bundles the three ports every movement store implements.
type Backend interface {
	sheets.MovementSource
	sheets.MovementWriter
	sheets.ReferenceReader
}

type Type string

const (
	MemoryBackend Type = "memory"
	SheetsBackend Type = "sheets"
)

// Config selects and parameterizes the backend. The sheet fields only
// matter for the sheets type.
type Config struct {
	Type            Type
	SpreadsheetID   string
	MovementsSheet  string
	ReferencesSheet string
}

// New builds the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Type {
	case SheetsBackend:
		cli, err := gsheet.New(ctx, cfg.SpreadsheetID, cfg.MovementsSheet, cfg.ReferencesSheet)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
		}
		slog.InfoContext(ctx, "Initialized Google Sheets backend")
		return cli, nil
	case MemoryBackend:
		store := memory.New("memoria", sampleRecords())
		slog.InfoContext(ctx, "Initialized memory backend", "rows", store.Len())
		return store, nil
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}
}

// sampleRecords seeds the development backend with a small prima nota so
// every report renders something out of the box.
func sampleRecords() []sheets.Record {
	return []sheets.Record{
		{"data": "2024-01-05", "Causale": "Donazione", "Centro di Costo": "Pisa", "Importo": "100,00", "Descrizione": "donazione liberale", "Cassa": "Banca", "Provincia": "Pisa"},
		{"data": "2024-01-10", "Causale": "Spesa", "Centro di Costo": "Pisa", "Importo": "-40,00", "Descrizione": "cancelleria", "Cassa": "Contanti", "Provincia": "Pisa"},
		{"data": "2024-01-15", "Causale": "Quota associativa", "Centro di Costo": "Siena", "Importo": "25,00", "Cassa": "Banca", "Provincia": "Siena"},
		{"data": "2024-02-01", "Causale": "Donazione", "Centro di Costo": "Firenze", "Importo": "1.234,56 €", "Cassa": "Banca", "Provincia": "Firenze"},
		{"data": "2024-02-12", "Causale": "Spesa", "Centro di Costo": "Siena", "Importo": "-15,00", "Cassa": "Contanti", "Provincia": "Siena"},
	}
}
