package jsonfile

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

var _ store.UserStore = (*UserStore)(nil)

// UserStore keeps the users document: {"<username>": "<password>"}.
type UserStore struct {
	doc    *document[map[string]string]
	hasher auth.Hasher
}

// NewUserStore creates a store backed by the file at path. A nil hasher
// stores passwords verbatim.
func NewUserStore(path string, hasher auth.Hasher) *UserStore {
	if hasher == nil {
		hasher = auth.PlaintextHasher{}
	}
	return &UserStore{
		doc:    newDocument(path, func() map[string]string { return make(map[string]string) }),
		hasher: hasher,
	}
}

// Path returns the location of the users document.
func (s *UserStore) Path() string {
	return s.doc.path
}

func (s *UserStore) Load(_ context.Context) (map[string]string, error) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.load()
}

func (s *UserStore) Save(_ context.Context, users map[string]string) error {
	if users == nil {
		users = make(map[string]string)
	}
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.doc.write(users)
}

func (s *UserStore) Register(ctx context.Context, username, password string) error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := users[username]; exists {
		return core.ErrDuplicateUser
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	users[username] = stored
	if err := s.doc.write(users); err != nil {
		return err
	}

	slog.InfoContext(ctx, "User registered", "username", username, "document", s.doc.path)
	return nil
}

func (s *UserStore) Verify(_ context.Context, username, password string) (bool, error) {
	s.doc.mu.Lock()
	users, err := s.load()
	s.doc.mu.Unlock()
	if err != nil {
		return false, err
	}

	stored, exists := users[username]
	if !exists {
		return false, nil
	}
	return s.hasher.Matches(stored, password), nil
}

func (s *UserStore) load() (map[string]string, error) {
	users, err := s.doc.read()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = make(map[string]string)
	}
	return users, nil
}
