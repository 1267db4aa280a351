package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"primanota/internal/core"
)

const maxBodyBytes = 64 * 1024

// userFromRequest derives the caller's role and province from the
// X-Role and X-Province headers. A missing role defaults to reader.
// Role gating is a visibility attribute, not authentication; the
// reverse proxy in front of the service sets these headers.
func userFromRequest(r *http.Request) (core.UserContext, error) {
	roleHeader := strings.TrimSpace(r.Header.Get("X-Role"))
	if roleHeader == "" {
		return core.UserContext{Role: core.RoleReader}, nil
	}
	role, err := core.ParseRole(roleHeader)
	if err != nil {
		return core.UserContext{}, err
	}
	return core.UserContext{
		Role:     role,
		Province: strings.TrimSpace(r.Header.Get("X-Province")),
	}, nil
}

// movementRequest is the JSON body of POST /api/movements. Amount is a
// string in the spreadsheet's European format ("1.234,56").
type movementRequest struct {
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Causale       string `json:"causale"`
	CostCenter    string `json:"cost_center"`
	Description   string `json:"description"`
	PaymentMethod string `json:"cassa"`
	Notes         string `json:"note"`
	Province      string `json:"province"`
}

func (m movementRequest) toTransaction() (core.Transaction, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(m.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:          date,
		Amount:        amount,
		Reason:        strings.TrimSpace(m.Causale),
		Category:      strings.TrimSpace(m.CostCenter),
		Description:   strings.TrimSpace(m.Description),
		PaymentMethod: strings.TrimSpace(m.PaymentMethod),
		Notes:         strings.TrimSpace(m.Notes),
		Province:      strings.TrimSpace(m.Province),
	}, nil
}

// balanceEntry is one operator-entered account balance. The amount uses
// the same European format as movement amounts.
type balanceEntry struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type balancesRequest struct {
	Balances []balanceEntry `json:"balances"`
}

func (b balancesRequest) toBalances() ([]core.AccountBalance, error) {
	out := make([]core.AccountBalance, 0, len(b.Balances))
	for _, e := range b.Balances {
		account := strings.TrimSpace(e.Account)
		if account == "" {
			return nil, fmt.Errorf("balance entry with empty account")
		}
		amount, err := core.ParseAmount(e.Balance)
		if err != nil {
			return nil, fmt.Errorf("balance for %q: %w", account, err)
		}
		out = append(out, core.AccountBalance{Account: account, Balance: amount})
	}
	return out, nil
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// yearFromPath parses the {year} path segment.
func yearFromPath(r *http.Request) (int, error) {
	raw := r.PathValue("year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// yearFromQuery parses an optional ?year= parameter, returning 0 when
// absent.
func yearFromQuery(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// monthFromQuery validates an optional ?month= parameter in "2006-01"
// form, returning "" when absent.
func monthFromQuery(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return "", nil
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", raw)
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", raw)
	}
	if m, err := strconv.Atoi(parts[1]); err != nil || m < 1 || m > 12 {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", raw)
	}
	return raw, nil
}
