package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository/memory"
)

func TestUserService_RegisterAndResolve(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(memory.NewStore().Users, "secret", time.Hour)

	user, err := users.Register(ctx, " Driver@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "driver@example.com", user.Email)
	assert.Equal(t, domain.DefaultBalance, user.Balance)
	assert.NotEmpty(t, user.APIKey)
	assert.Empty(t, user.PasswordHash)

	byKey, err := users.ResolveAPIKey(ctx, user.APIKey)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byKey.ID)

	_, err = users.Register(ctx, "driver@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserService_RegisterValidation(t *testing.T) {
	users := NewUserService(memory.NewStore().Users, "secret", time.Hour)

	_, err := users.Register(context.Background(), "not-an-email", "password123")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = users.Register(context.Background(), "a@b.c", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_ResolveAPIKey_Unknown(t *testing.T) {
	users := NewUserService(memory.NewStore().Users, "secret", time.Hour)

	_, err := users.ResolveAPIKey(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = users.ResolveAPIKey(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_Tokens(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewStore().Users, "secret", time.Minute)
	user, err := svc.Register(ctx, "driver@example.com", "password123")
	require.NoError(t, err)

	token, expiresAt, err := svc.IssueToken(ctx, "driver@example.com", "password123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, _, err = svc.IssueToken(ctx, "driver@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.ResolveToken(ctx, token+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other := NewUserService(memory.NewStore().Users, "other-secret", time.Minute)
	_, err = other.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewStore().Users, "secret", time.Minute).(*userService)
	_, err := svc.Register(ctx, "driver@example.com", "password123")
	require.NoError(t, err)

	token, _, err := svc.IssueToken(ctx, "driver@example.com", "password123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.NewStore().Users, "secret", time.Hour)

	first, err := svc.EnsureUser(ctx, "demo@iberopuebla.mx", "testkey", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 300.0, first.Balance)

	again, err := svc.EnsureUser(ctx, "demo@iberopuebla.mx", "other", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "testkey", again.APIKey)

	// no password means no token login
	_, _, err = svc.IssueToken(ctx, "demo@iberopuebla.mx", "anything")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
