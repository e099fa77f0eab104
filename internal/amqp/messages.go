package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
)

// EventExpenseRecorded is the message type set on published deliveries.
const EventExpenseRecorded = "expense.recorded"

var ErrMalformedMessage = errors.New("malformed expense message")

// ExpenseRecordedMessage announces an expense appended to a user's log.
// It carries the full expense since the log has no row identifiers.
type ExpenseRecordedMessage struct {
	MessageID string       `json:"message_id"`
	Username  string       `json:"username"`
	Expense   core.Expense `json:"expense"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewExpenseRecordedMessage(username string, e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		MessageID: uuid.NewString(),
		Username:  username,
		Expense:   e,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a delivery body. Bodies that do not
// decode, or lack a message id or a known category, are malformed.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Join(ErrMalformedMessage, err)
	}
	if _, err := uuid.Parse(msg.MessageID); err != nil {
		return nil, errors.Join(ErrMalformedMessage, err)
	}
	if !msg.Expense.Category.IsValid() {
		return nil, errors.Join(ErrMalformedMessage, core.ErrInvalidCategory)
	}
	return &msg, nil
}
