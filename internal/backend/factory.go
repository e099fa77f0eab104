package backend

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/auth"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/store/jsonfile"
	"expensetracker/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(config.PasswordStorage)
	if err != nil {
		return nil, err
	}

	var result *Result
	switch config.Type {
	case JSONBackend:
		result = f.createJSONBackend(config, hasher)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config, hasher)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createJSONBackend(config Config, hasher auth.Hasher) *Result {
	users := jsonfile.NewUserStore(config.UsersFile, hasher)
	expenses := jsonfile.NewExpenseStore(config.ExpensesFile)

	f.logger.Info("Initialized JSON backend",
		"users_file", config.UsersFile,
		"expenses_file", config.ExpensesFile)

	return &Result{
		Users:    users,
		Expenses: expenses,
		Ready: func(ctx context.Context) error {
			if _, err := users.Load(ctx); err != nil {
				return err
			}
			_, err := expenses.Load(ctx)
			return err
		},
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config, hasher auth.Hasher) (*Result, error) {
	repo, err := sqlite.Open(config.SQLiteDBPath, hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Users:    repo.Users(),
		Expenses: repo.Expenses(),
		Ready:    repo.Ping,
		Cleanup:  repo.Close,
	}, nil
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached leaves the backend running without events.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *Result) {
	if config.AMQPURL == "" {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", sl.Err(err))
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	storageCleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
		if storageCleanup != nil {
			if err := storageCleanup(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}
