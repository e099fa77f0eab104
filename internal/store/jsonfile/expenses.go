package jsonfile

import (
	"context"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

var _ store.ExpenseStore = (*ExpenseStore)(nil)

// ExpenseStore keeps the expenses document: {"<username>": [expense, ...]}.
type ExpenseStore struct {
	doc *document[map[string][]core.Expense]
}

func NewExpenseStore(path string) *ExpenseStore {
	return &ExpenseStore{
		doc: newDocument(path, func() map[string][]core.Expense { return make(map[string][]core.Expense) }),
	}
}

// Path returns the location of the expenses document.
func (s *ExpenseStore) Path() string {
	return s.doc.path
}

func (s *ExpenseStore) Load(_ context.Context) (map[string][]core.Expense, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.load()
}

func (s *ExpenseStore) Save(_ context.Context, expenses map[string][]core.Expense) error {
	if expenses == nil {
		expenses = make(map[string][]core.Expense)
	}
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.doc.write(expenses)
}

func (s *ExpenseStore) Append(ctx context.Context, username string, e core.Expense) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all[username] = append(all[username], e)
	if err := s.doc.write(all); err != nil {
		return err
	}

	slog.DebugContext(ctx, "Expense appended",
		"username", username,
		"category", e.Category,
		"amount", e.Amount.String(),
		"count", len(all[username]))
	return nil
}

func (s *ExpenseStore) GetAll(_ context.Context, username string) ([]core.Expense, error) {
	s.doc.mu.Lock()
	all, err := s.load()
	s.doc.mu.Unlock()
	if err != nil {
		return nil, err
	}

	items := all[username]
	out := make([]core.Expense, len(items))
	copy(out, items)
	return out, nil
}

func (s *ExpenseStore) load() (map[string][]core.Expense, error) {
	all, err := s.doc.read()
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = make(map[string][]core.Expense)
	}
	return all, nil
}
