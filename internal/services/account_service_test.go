package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/store/jsonfile"
)

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(jsonfile.NewUserStore(filepath.Join(t.TempDir(), "users.json"), nil))

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))
	assert.ErrorIs(t, svc.Register(ctx, "alice", "pw2"), core.ErrDuplicateUser)

	assert.NoError(t, svc.Authenticate(ctx, "alice", "pw1"))
	assert.ErrorIs(t, svc.Authenticate(ctx, "alice", "pw2"), core.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Authenticate(ctx, "nobody", "pw1"), core.ErrInvalidCredentials)
}
