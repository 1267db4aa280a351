package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleTreasurer  Role = "treasurer"
	RoleReader     Role = "reader"
)

type (
	// Role is the closed set of user roles. Role gating is an attribute
	// check on ledger visibility and movement submission, not a security
	// boundary.
	Role string

	// UserContext carries the identity attributes every loader and report
	// call receives explicitly. There is no ambient current-user state.
	UserContext struct {
		Role     Role
		Province string
	}

	// Transaction is one normalized ledger row. Amount sign encodes the
	// direction: positive is an inflow, negative an outflow.
	Transaction struct {
		Date          time.Time
		Amount        Money
		Category      string // centro di costo
		Reason        string // causale
		Description   string
		PaymentMethod string // cassa
		Notes         string
		Province      string
	}

	// AccountBalance is an operator-entered closing balance for one cassa,
	// used as the external reference during reconciliation.
	AccountBalance struct {
		Account string
		Balance Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidRole   = errors.New("invalid role")
	ErrEmptyCategory = errors.New("empty cost center")
	ErrEmptyReason   = errors.New("empty causale")
)

// ParseRole maps a role label to the closed enumeration. The Italian labels
// used by the historical spreadsheet operators are accepted as synonyms.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "superadmin":
		return RoleAdmin, nil
	case "supervisor", "supervisore":
		return RoleSupervisor, nil
	case "treasurer", "tesoriere":
		return RoleTreasurer, nil
	case "reader", "lettore":
		return RoleReader, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// CanAppend reports whether the user may submit new movements.
// Historically reserved to the superadmin and the tesorieri.
func (u UserContext) CanAppend() bool {
	return u.Role == RoleAdmin || u.Role == RoleTreasurer
}

// ScopedProvince returns the province the user's ledger view is restricted
// to, or "" for roles that see the full ledger. Only the treasurer role is
// bound to a province.
func (u UserContext) ScopedProvince() string {
	if u.Role == RoleTreasurer {
		return strings.TrimSpace(u.Province)
	}
	return ""
}

// YearMonth returns the "2006-01" grouping key for period filters.
func (t Transaction) YearMonth() string {
	return t.Date.Format("2006-01")
}

// IsDonation reports whether the causale classifies this movement as a
// donation. Matching is a case-insensitive substring check so that
// "Donazione liberale" and "donazione" both qualify.
func (t Transaction) IsDonation() bool {
	return strings.Contains(strings.ToLower(t.Reason), "donazione")
}

// Validate checks the fields required for a new movement submission.
// Loaded rows are validated by the normalizer instead.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Reason) == "" {
		return ErrEmptyReason
	}
	return nil
}
