package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "testuser", "hash123", model.RoleStaff)
	require.NoError(t, err)
	require.Equal(t, "testuser", user.Username)
	require.Equal(t, model.RoleStaff, user.Role)

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	require.Equal(t, "testuser", got.Username)
}

func TestCreateUserUnknownRole(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateUser(context.Background(), database, "x", "hash", "manager")
	require.Error(t, err)
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)
	require.NoError(t, err)

	user, err := GetUserByUsername(ctx, database, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = GetUserByUsername(ctx, database, "bob")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserByUsernamePrefersActive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	old, err := CreateUser(ctx, database, "reused", "old", model.RoleStaff)
	require.NoError(t, err)
	require.NoError(t, DeleteUser(ctx, database, old.ID))

	_, err = CreateUser(ctx, database, "reused", "new", model.RoleUser)
	require.NoError(t, err)

	got, err := GetUserByUsername(ctx, database, "reused")
	require.NoError(t, err)
	require.Nil(t, got.DeletedAt)
	require.Equal(t, "new", got.PasswordHash)
}

func TestListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "a", "hash", model.RoleUser)
	CreateUser(ctx, database, "b", "hash", model.RoleStaff)

	users, err := ListUsers(ctx, database)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "deleteme", "hash", model.RoleUser)
	require.NoError(t, DeleteUser(ctx, database, user.ID))

	users, err := ListUsers(ctx, database)
	require.NoError(t, err)
	require.Empty(t, users)

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "pwuser", "oldhash", model.RoleUser)
	require.NoError(t, UpdateUserPassword(ctx, database, user.ID, "newhash"))

	got, _ := GetUser(ctx, database, user.ID)
	require.Equal(t, "newhash", got.PasswordHash)

	require.ErrorIs(t, UpdateUserPassword(ctx, database, 999, "x"), ErrNotFound)
}
