// Package worker mirrors recorded expenses into a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/metrics"
	"expensetracker/internal/sheets"
)

// SyncWorker turns expense.recorded messages into sheet rows.
type SyncWorker struct {
	writer sheets.RowWriter
	lister sheets.RowLister
}

// NewSyncWorker creates a worker. lister may be nil, in which case
// redelivered messages can produce duplicate rows.
func NewSyncWorker(writer sheets.RowWriter, lister sheets.RowLister) *SyncWorker {
	return &SyncWorker{
		writer: writer,
		lister: lister,
	}
}

// HandleExpenseRecorded appends one row for msg. Returning an error makes
// the consumer requeue the message.
func (w *SyncWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	logger := slog.With(
		log.FieldComponent, log.ComponentSheets,
		log.FieldOperation, log.OpSync,
		"message_id", msg.MessageID,
		log.FieldUsername, msg.Username)

	if w.lister != nil {
		seen, err := w.lister.HasMessage(ctx, msg.MessageID)
		if err != nil {
			metrics.RowSynced(metrics.ResultError)
			return fmt.Errorf("check existing rows: %w", err)
		}
		if seen {
			logger.InfoContext(ctx, "Expense already mirrored, skipping")
			metrics.RowSynced(metrics.ResultDuplicate)
			return nil
		}
	}

	row := sheets.Row{
		MessageID: msg.MessageID,
		Username:  msg.Username,
		Expense:   msg.Expense,
	}
	if err := w.writer.AppendRow(ctx, row); err != nil {
		logger.ErrorContext(ctx, "Failed to append expense row", sl.Err(err))
		metrics.RowSynced(metrics.ResultError)
		return fmt.Errorf("append to sheets: %w", err)
	}

	metrics.RowSynced(metrics.ResultOK)
	logger.InfoContext(ctx, "Successfully synced expense",
		log.FieldCategory, msg.Expense.Category,
		log.FieldAmount, msg.Expense.Amount.String(),
		log.FieldDate, msg.Expense.Date.String())
	return nil
}
