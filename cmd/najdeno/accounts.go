package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// createAccount stores a new user. An empty password is replaced by a
// generated one, which is returned.
func createAccount(ctx context.Context, database *sql.DB, username, password, role string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	if !model.ValidRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}

	if password == "" {
		var err error
		if password, err = generatePassword(16); err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
	} else if err := model.ValidatePassword(password); err != nil {
		return "", err
	}

	if existing, err := store.GetUserByUsername(ctx, database, username); err == nil && existing.DeletedAt == nil {
		return "", fmt.Errorf("user %q already exists", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, username, string(hash), role); err != nil {
		return "", err
	}

	slog.Info("user created", "user", username, "role", role)
	return password, nil
}

// activeUser looks up a user that has not been deleted.
func activeUser(ctx context.Context, database *sql.DB, username string) (*model.User, error) {
	user, err := store.GetUserByUsername(ctx, database, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if user.DeletedAt != nil {
		return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
	}
	return user, nil
}

// resetPassword sets a new password, generating one when password is empty.
func resetPassword(ctx context.Context, database *sql.DB, username, password string) (string, error) {
	user, err := activeUser(ctx, database, username)
	if err != nil {
		return "", err
	}

	if password == "" {
		if password, err = generatePassword(16); err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
	} else if err := model.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	if err := store.UpdateUserPassword(ctx, database, user.ID, string(hash)); err != nil {
		return "", err
	}

	slog.Info("password changed", "user", username)
	return password, nil
}

// deleteAccount soft-deletes a user. Existing sessions stop working on their
// next request.
func deleteAccount(ctx context.Context, database *sql.DB, username string) error {
	user, err := activeUser(ctx, database, username)
	if err != nil {
		return err
	}
	if err := store.DeleteUser(ctx, database, user.ID); err != nil {
		return err
	}
	slog.Info("user deleted", "user", username)
	return nil
}

// bootstrapAdmin creates the first admin account when the database has no
// users and prints its credentials to out.
func bootstrapAdmin(ctx context.Context, database *sql.DB, username string, out io.Writer) error {
	users, err := store.ListUsers(ctx, database)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	password, err := createAccount(ctx, database, username, "", model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	printCredentials(out, "Admin account created:", username, password)
	return nil
}

func printCredentials(out io.Writer, heading, username, password string) {
	fmt.Fprintln(out, heading)
	fmt.Fprintf(out, "  Username: %s\n", username)
	fmt.Fprintf(out, "  Password: %s\n", password)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Save this password. It cannot be recovered.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
