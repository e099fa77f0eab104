package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

var _ store.UserStore = (*UserStore)(nil)

type UserStore struct {
	repo *Repository
}

func (s *UserStore) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.db.QueryContext(ctx, `SELECT username, password FROM users`)
	if err != nil {
		return nil, core.NewStorageReadError(s.repo.document("users"), err)
	}
	defer rows.Close()

	users := make(map[string]string)
	for rows.Next() {
		var username, password string
		if err := rows.Scan(&username, &password); err != nil {
			return nil, core.NewStorageReadError(s.repo.document("users"), err)
		}
		users[username] = password
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageReadError(s.repo.document("users"), err)
	}
	return users, nil
}

func (s *UserStore) Save(ctx context.Context, users map[string]string) error {
	err := s.repo.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return err
		}
		for username, password := range users {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO users (username, password) VALUES (?, ?)`, username, password); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.NewStorageWriteError(s.repo.document("users"), err)
	}
	return nil
}

func (s *UserStore) Register(ctx context.Context, username, password string) error {
	if _, found, err := s.lookup(ctx, username); err != nil {
		return err
	} else if found {
		return core.ErrDuplicateUser
	}

	stored, err := s.repo.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res, err := s.repo.db.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES (?, ?) ON CONFLICT(username) DO NOTHING`,
		username, stored)
	if err != nil {
		return core.NewStorageWriteError(s.repo.document("users"), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageWriteError(s.repo.document("users"), err)
	}
	if n == 0 {
		return core.ErrDuplicateUser
	}

	slog.InfoContext(ctx, "User registered", "username", username, "backend", "sqlite")
	return nil
}

func (s *UserStore) Verify(ctx context.Context, username, password string) (bool, error) {
	stored, found, err := s.lookup(ctx, username)
	if err != nil || !found {
		return false, err
	}
	return s.repo.hasher.Matches(stored, password), nil
}

func (s *UserStore) lookup(ctx context.Context, username string) (string, bool, error) {
	var stored string
	err := s.repo.db.QueryRowContext(ctx,
		`SELECT password FROM users WHERE username = ?`, username).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, core.NewStorageReadError(s.repo.document("users"), err)
	}
	return stored, true, nil
}
