package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/metrics"
	"expensetracker/internal/store"
)

// EventPublisher announces appended expenses to other processes.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, username string, e core.Expense) error
}

// ExpenseService orchestrates expense operations across the store and AMQP.
type ExpenseService struct {
	store     store.ExpenseStore
	publisher EventPublisher
}

// NewExpenseService wires the store. publisher may be nil when AMQP is not configured.
func NewExpenseService(store store.ExpenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// AddExpense validates e, appends it to the user's log and publishes an
// expense.recorded event. Publish failures never fail the call.
func (s *ExpenseService) AddExpense(ctx context.Context, username string, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}

	if err := s.store.Append(ctx, username, e); err != nil {
		return fmt.Errorf("append expense: %w", err)
	}
	metrics.ExpenseAppended(e.Category.String())

	if err := s.publishRecorded(ctx, username, e); err != nil {
		metrics.EventPublished(metrics.ResultError)
		slog.ErrorContext(ctx, "Failed to publish expense recorded message",
			"username", username, sl.Err(err))
	}

	return nil
}

// Expenses returns the user's expenses in insertion order.
func (s *ExpenseService) Expenses(ctx context.Context, username string) ([]core.Expense, error) {
	items, err := s.store.GetAll(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get expenses: %w", err)
	}
	return items, nil
}

// Summary loads the user's expenses and aggregates them.
func (s *ExpenseService) Summary(ctx context.Context, username string) ([]core.Expense, core.Summary, error) {
	items, err := s.Expenses(ctx, username)
	if err != nil {
		return nil, core.Summary{}, err
	}
	return items, core.Summarize(items), nil
}

func (s *ExpenseService) publishRecorded(ctx context.Context, username string, e core.Expense) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping expense recorded message")
		return nil
	}
	if err := s.publisher.PublishExpenseRecorded(ctx, username, e); err != nil {
		return err
	}
	metrics.EventPublished(metrics.ResultOK)
	return nil
}

// IsValidationError reports whether err came from expense validation.
func IsValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidCategory) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate)
}
