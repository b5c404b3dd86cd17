package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "test-jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)))

	revoked, err = IsTokenRevoked(ctx, database, "test-jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "test-jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevokeTokenIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)))
}

func TestRevokeTokenPrunesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, RevokeToken(ctx, database, "stale", time.Now().Add(-time.Hour)))
	require.NoError(t, RevokeToken(ctx, database, "fresh", time.Now().Add(time.Hour)))

	revoked, err := IsTokenRevoked(ctx, database, "stale")
	require.NoError(t, err)
	require.False(t, revoked)
}
