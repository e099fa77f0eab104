// Package sheets defines the spreadsheet mirror of the expense log.
package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []string{"Date", "Username", "Category", "Amount", "Note", "Message ID"}

// Row is one mirrored expense.
type Row struct {
	MessageID string
	Username  string
	Expense   core.Expense
}

// Values returns the cells of r in Header order.
func (r Row) Values() []any {
	return []any{
		r.Expense.Date.String(),
		r.Username,
		r.Expense.Category.String(),
		r.Expense.Amount.String(),
		r.Expense.Note,
		r.MessageID,
	}
}

// RowWriter appends rows to the mirror.
type RowWriter interface {
	AppendRow(ctx context.Context, row Row) error
}

// RowLister reads back the message ids already mirrored, so redelivered
// messages do not produce duplicate rows.
type RowLister interface {
	HasMessage(ctx context.Context, messageID string) (bool, error)
}
