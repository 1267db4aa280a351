package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"primanota/internal/core"
	ports "primanota/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and appends prima nota rows on a Google spreadsheet.
type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	movementsSheet  string
	referencesSheet string
}

// Ensure interface conformance
var (
	_ ports.MovementSource  = (*Client)(nil)
	_ ports.MovementWriter  = (*Client)(nil)
	_ ports.ReferenceReader = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet and worksheet
// names. Empty sheet names fall back to the historical defaults.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, movementsSheet, referencesSheet string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	movements := strings.TrimSpace(movementsSheet)
	if movements == "" {
		movements = "Prima Nota"
	}
	references := strings.TrimSpace(referencesSheet)
	if references == "" {
		references = "riferimenti"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:             svc,
		spreadsheetID:   spreadsheetID,
		movementsSheet:  movements,
		referencesSheet: references,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ID implements ports.MovementSource.
func (c *Client) ID() string {
	return c.spreadsheetID + "/" + c.movementsSheet
}

// Records reads the whole prima nota worksheet. The first row is the
// header; keys are trimmed of surrounding whitespace since header drift
// across spreadsheet edits is expected.
func (c *Client) Records(ctx context.Context) ([]ports.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:H", c.movementsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	headers := toStrings(resp.Values[0])
	records := make([]ports.Record, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rec := ports.Record{}
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			var v any
			if i < len(row) {
				v = row[i]
			}
			if s, ok := v.(string); ok {
				if strings.TrimSpace(s) != "" {
					empty = false
				}
			} else if v != nil {
				empty = false
			}
			rec[h] = v
		}
		if empty {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Append writes one movement row after the existing data, in the column
// order the spreadsheet has always used: data, Causale, Centro di Costo,
// Importo, Descrizione, Cassa, Note, Provincia.
func (c *Client) Append(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		t.Date.Format("2006-01-02"),
		t.Reason,
		t.Category,
		t.Amount.Euros(),
		t.Description,
		t.PaymentMethod,
		t.Notes,
		t.Province,
	}
	rng := fmt.Sprintf("%s!A:H", c.movementsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.movementsSheet, err)
	}

	slog.InfoContext(ctx, "Movement appended to spreadsheet",
		"sheet", c.movementsSheet,
		"date", t.Date.Format("2006-01-02"),
		"amount_cents", t.Amount.Cents)
	return nil
}

// References reads the riferimenti worksheet and returns the deduplicated
// causale, cost-center and cassa lists.
func (c *Client) References(ctx context.Context) (ports.References, error) {
	if c.svc == nil {
		return ports.References{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:C", c.referencesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return ports.References{}, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		return ports.References{}, nil
	}

	headers := toStrings(resp.Values[0])
	colCausale := indexOf(headers, "Causale")
	colCentro := indexOf(headers, "Centro di costo")
	colCassa := indexOf(headers, "Cassa")

	var refs ports.References
	for _, row := range resp.Values[1:] {
		cols := toStrings(row)
		if v := safeGet(cols, colCausale); v != "" {
			refs.Causali = append(refs.Causali, v)
		}
		if v := safeGet(cols, colCentro); v != "" {
			refs.CostCenters = append(refs.CostCenters, v)
		}
		if v := safeGet(cols, colCassa); v != "" {
			refs.Casse = append(refs.Casse, v)
		}
	}
	refs.Causali = dedupe(refs.Causali)
	refs.CostCenters = dedupe(refs.CostCenters)
	refs.Casse = dedupe(refs.Casse)
	return refs, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
