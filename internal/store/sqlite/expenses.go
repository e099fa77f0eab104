package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

var _ store.ExpenseStore = (*ExpenseStore)(nil)

type ExpenseStore struct {
	repo *Repository
}

func (s *ExpenseStore) Load(ctx context.Context) (map[string][]core.Expense, error) {
	rows, err := s.repo.db.QueryContext(ctx,
		`SELECT username, category, amount, date, note FROM expenses ORDER BY id`)
	if err != nil {
		return nil, core.NewStorageReadError(s.repo.document("expenses"), err)
	}
	defer rows.Close()

	all := make(map[string][]core.Expense)
	for rows.Next() {
		username, e, err := scanExpense(rows)
		if err != nil {
			return nil, core.NewStorageReadError(s.repo.document("expenses"), err)
		}
		all[username] = append(all[username], e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageReadError(s.repo.document("expenses"), err)
	}
	return all, nil
}

func (s *ExpenseStore) Save(ctx context.Context, expenses map[string][]core.Expense) error {
	err := s.repo.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return err
		}
		for username, items := range expenses {
			for _, e := range items {
				if err := insertExpense(ctx, tx, username, e); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return core.NewStorageWriteError(s.repo.document("expenses"), err)
	}
	return nil
}

func (s *ExpenseStore) Append(ctx context.Context, username string, e core.Expense) error {
	if err := insertExpense(ctx, s.repo.db, username, e); err != nil {
		return core.NewStorageWriteError(s.repo.document("expenses"), err)
	}
	slog.DebugContext(ctx, "Expense saved to SQLite",
		"username", username,
		"category", e.Category,
		"amount", e.Amount.String())
	return nil
}

func (s *ExpenseStore) GetAll(ctx context.Context, username string) ([]core.Expense, error) {
	rows, err := s.repo.db.QueryContext(ctx,
		`SELECT username, category, amount, date, note FROM expenses WHERE username = ? ORDER BY id`, username)
	if err != nil {
		return nil, core.NewStorageReadError(s.repo.document("expenses"), err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		_, e, err := scanExpense(rows)
		if err != nil {
			return nil, core.NewStorageReadError(s.repo.document("expenses"), err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageReadError(s.repo.document("expenses"), err)
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExpense(ctx context.Context, db execer, username string, e core.Expense) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO expenses (username, category, amount, date, note) VALUES (?, ?, ?, ?, ?)`,
		username, string(e.Category), e.Amount.String(), e.Date.String(), e.Note)
	return err
}

func scanExpense(rows *sql.Rows) (string, core.Expense, error) {
	var username, category, amount, date, note string
	if err := rows.Scan(&username, &category, &amount, &date, &note); err != nil {
		return "", core.Expense{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", core.Expense{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	var day core.Date
	if date != "" {
		if day, err = core.ParseDate(date); err != nil {
			return "", core.Expense{}, fmt.Errorf("date %q: %w", date, err)
		}
	}
	return username, core.Expense{
		Category: core.Category(category),
		Amount:   core.NewMoney(d),
		Date:     day,
		Note:     note,
	}, nil
}
