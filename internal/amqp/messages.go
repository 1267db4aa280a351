package amqp

import (
	"encoding/json"
	"time"

	"primanota/internal/core"
)

// MovementAppendedMessage announces a movement appended to the external
// spreadsheet. It carries the full row so the mirror worker never needs
// its own spreadsheet access.
type MovementAppendedMessage struct {
	Date        string    `json:"date"` // 2006-01-02
	AmountCents int64     `json:"amount_cents"`
	Causale     string    `json:"causale"`
	CostCenter  string    `json:"cost_center"`
	Description string    `json:"description,omitempty"`
	Cassa       string    `json:"cassa,omitempty"`
	Note        string    `json:"note,omitempty"`
	Province    string    `json:"province,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewMovementAppendedMessage builds a message from a normalized movement.
func NewMovementAppendedMessage(t core.Transaction) *MovementAppendedMessage {
	return &MovementAppendedMessage{
		Date:        t.Date.Format("2006-01-02"),
		AmountCents: t.Amount.Cents,
		Causale:     t.Reason,
		CostCenter:  t.Category,
		Description: t.Description,
		Cassa:       t.PaymentMethod,
		Note:        t.Notes,
		Province:    t.Province,
		Timestamp:   time.Now(),
	}
}

// Transaction rebuilds the movement carried by the message.
func (m *MovementAppendedMessage) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:          date,
		Amount:        core.Money{Cents: m.AmountCents},
		Reason:        m.Causale,
		Category:      m.CostCenter,
		Description:   m.Description,
		PaymentMethod: m.Cassa,
		Notes:         m.Note,
		Province:      m.Province,
	}, nil
}

// ToJSON converts the message to JSON bytes.
func (m *MovementAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MovementAppendedMessageFromJSON creates a message from JSON bytes.
func MovementAppendedMessageFromJSON(data []byte) (*MovementAppendedMessage, error) {
	var msg MovementAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
