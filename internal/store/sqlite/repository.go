// Package sqlite stores users and expenses in a SQLite database. It keeps the
// same mapping-by-username contract as the JSON documents but updates rows
// instead of rewriting whole documents.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"expensetracker/internal/auth"

	_ "modernc.org/sqlite"
)

// Repository owns the database handle shared by UserStore and ExpenseStore.
type Repository struct {
	db     *sql.DB
	path   string
	hasher auth.Hasher
}

// Open creates the database file if needed, applies migrations and returns
// a ready repository. A nil hasher stores passwords verbatim.
func Open(dbPath string, hasher auth.Hasher) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if hasher == nil {
		hasher = auth.PlaintextHasher{}
	}
	return &Repository{db: db, path: dbPath, hasher: hasher}, nil
}

// Users returns the user store view of the repository.
func (r *Repository) Users() *UserStore {
	return &UserStore{repo: r}
}

// Expenses returns the expense store view of the repository.
func (r *Repository) Expenses() *ExpenseStore {
	return &ExpenseStore{repo: r}
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) document(table string) string {
	return "sqlite:" + r.path + "#" + table
}

// withTx runs fn in a transaction and commits when it returns nil.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
