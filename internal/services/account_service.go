package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/metrics"
	"expensetracker/internal/store"
)

// AccountService handles sign-up and credential checks.
type AccountService struct {
	users store.UserStore
}

func NewAccountService(users store.UserStore) *AccountService {
	return &AccountService{users: users}
}

// Register creates a user. Usernames and passwords are taken as typed.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	err := s.users.Register(ctx, username, password)
	switch {
	case err == nil:
		metrics.Registration(metrics.ResultOK)
		return nil
	case errors.Is(err, core.ErrDuplicateUser):
		metrics.Registration(metrics.ResultDuplicate)
		return err
	default:
		metrics.Registration(metrics.ResultError)
		return fmt.Errorf("register user: %w", err)
	}
}

// Authenticate returns core.ErrInvalidCredentials unless the pair matches a stored user.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) error {
	ok, err := s.users.Verify(ctx, username, password)
	if err != nil {
		metrics.Login(metrics.ResultError)
		return fmt.Errorf("verify user: %w", err)
	}
	if !ok {
		metrics.Login(metrics.ResultInvalid)
		slog.InfoContext(ctx, "Login rejected", "username", username)
		return core.ErrInvalidCredentials
	}
	metrics.Login(metrics.ResultOK)
	return nil
}
