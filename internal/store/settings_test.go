package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	require.Len(t, secret1, 64) // 32 bytes = 64 hex chars

	secret2, err := GetJWTSecret(ctx, database)
	require.NoError(t, err)
	require.Equal(t, secret1, secret2)
}

func TestGetSecretKeysAreIndependent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	jwtSecret, err := GetSecret(ctx, database, SettingJWTSecret)
	require.NoError(t, err)
	csrfKey, err := GetSecret(ctx, database, SettingCSRFKey)
	require.NoError(t, err)
	require.NotEqual(t, jwtSecret, csrfKey)
}
