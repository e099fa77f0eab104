package backend

import (
	"context"

	"expensetracker/internal/services"
	"expensetracker/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds the stores for the selected backend plus the optional event
// publisher. Publisher is nil when AMQP is not configured or unreachable.
type Result struct {
	Users     store.UserStore
	Expenses  store.ExpenseStore
	Publisher services.EventPublisher
	// Ready reports whether the storage can currently be read.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Password storage mode, see auth.NewHasher
	PasswordStorage string

	// JSON documents
	UsersFile    string
	ExpensesFile string

	// SQLite
	SQLiteDBPath string

	// AMQP, optional for both backends
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
