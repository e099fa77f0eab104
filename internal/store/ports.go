// Package store declares the persistence ports of the expense tracker.
//
// Both stores keep a mapping keyed by username. Implementations live in
// store/jsonfile (two JSON documents) and store/sqlite.
package store

import (
	"context"

	"expensetracker/internal/core"
)

type (
	// UserStore owns the username -> password mapping.
	UserStore interface {
		// Load returns the whole mapping, empty when nothing has been persisted yet.
		Load(ctx context.Context) (map[string]string, error)
		// Save replaces the whole mapping.
		Save(ctx context.Context, users map[string]string) error
		// Register adds a user. It returns core.ErrDuplicateUser and changes
		// nothing when the username is taken.
		Register(ctx context.Context, username, password string) error
		// Verify reports whether username exists and password matches exactly.
		Verify(ctx context.Context, username, password string) (bool, error)
	}

	// ExpenseStore owns the username -> ordered expenses mapping.
	ExpenseStore interface {
		Load(ctx context.Context) (map[string][]core.Expense, error)
		Save(ctx context.Context, expenses map[string][]core.Expense) error
		// Append adds e at the end of the user's sequence.
		Append(ctx context.Context, username string, e core.Expense) error
		// GetAll returns the user's expenses in insertion order, or an empty
		// slice when the user has none.
		GetAll(ctx context.Context, username string) ([]core.Expense, error)
	}
)
