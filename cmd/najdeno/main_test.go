package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func TestLevelRouter(t *testing.T) {
	var info, errs bytes.Buffer
	logger := slog.New(newLevelRouter(&info, &errs)).With("component", "test")

	logger.Debug("hidden")
	logger.Info("started")
	logger.Warn("slow")
	logger.Error("failed")

	require.NotContains(t, info.String(), "hidden")
	require.Contains(t, info.String(), "started")
	require.Contains(t, info.String(), "slow")
	require.NotContains(t, info.String(), "failed")
	require.Contains(t, errs.String(), "failed")
	require.Contains(t, errs.String(), "component=test")
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := generatePassword(16)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestBootstrapAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, bootstrapAdmin(ctx, database, "admin", &out))
	require.Contains(t, out.String(), "Username: admin")

	user, err := store.GetUserByUsername(ctx, database, "admin")
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, user.Role)

	line := out.String()[strings.Index(out.String(), "Password: ")+len("Password: "):]
	password := strings.TrimSpace(strings.SplitN(line, "\n", 2)[0])
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))

	// Second run leaves existing accounts alone.
	out.Reset()
	require.NoError(t, bootstrapAdmin(ctx, database, "admin", &out))
	require.Empty(t, out.String())
}

func TestCreateAccount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	password, err := createAccount(ctx, database, "desk", "long-enough", model.RoleStaff)
	require.NoError(t, err)
	require.Equal(t, "long-enough", password)

	_, err = createAccount(ctx, database, "desk", "long-enough", model.RoleStaff)
	require.ErrorContains(t, err, "already exists")

	_, err = createAccount(ctx, database, "other", "short", model.RoleStaff)
	require.Error(t, err)

	_, err = createAccount(ctx, database, "other", "", "owner")
	require.ErrorContains(t, err, "unknown role")

	_, err = createAccount(ctx, database, "", "long-enough", model.RoleStaff)
	require.Error(t, err)
}

func TestResetPasswordAndDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := createAccount(ctx, database, "desk", "long-enough", model.RoleStaff)
	require.NoError(t, err)

	password, err := resetPassword(ctx, database, "desk", "")
	require.NoError(t, err)
	require.Len(t, password, 16)

	user, err := store.GetUserByUsername(ctx, database, "desk")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))

	require.NoError(t, deleteAccount(ctx, database, "desk"))
	require.ErrorIs(t, deleteAccount(ctx, database, "desk"), store.ErrNotFound)

	_, err = resetPassword(ctx, database, "desk", "")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The name is free again once the old account is gone.
	_, err = createAccount(ctx, database, "desk", "long-enough", model.RoleStaff)
	require.NoError(t, err)
}
