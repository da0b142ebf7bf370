package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"inventory/internal/core"
)

// ExpenseRecordedMessage carries one expense-by-category record from a
// producer to the ingestion worker.
type ExpenseRecordedMessage struct {
	ID               string          `json:"id"`
	ExpenseSummaryID string          `json:"expenseSummaryId"`
	Date             core.Date       `json:"date"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Timestamp        time.Time       `json:"timestamp"`
}

// NewExpenseRecordedMessage wraps e, stamped with the current time.
func NewExpenseRecordedMessage(e core.ExpenseByCategory) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:               e.ID,
		ExpenseSummaryID: e.ExpenseSummaryID,
		Date:             e.Date,
		Category:         e.Category,
		Amount:           e.Amount,
		Timestamp:        time.Now().UTC(),
	}
}

// ToRecord converts the message back to the domain record.
func (m *ExpenseRecordedMessage) ToRecord() core.ExpenseByCategory {
	return core.ExpenseByCategory{
		ID:               m.ID,
		ExpenseSummaryID: m.ExpenseSummaryID,
		Date:             m.Date,
		Category:         m.Category,
		Amount:           m.Amount,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a message body.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
