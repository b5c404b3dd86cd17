package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

var (
	// ErrInvalidCredentials covers every login failure: unknown user, wrong
	// password, and accounts without staff privilege.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned when an operation requires a valid staff session.
	ErrUnauthorized = errors.New("staff session required")
)

// Session is an authenticated staff login.
type Session struct {
	ID        string
	UserID    int64
	Username  string
	Role      string
	ExpiresAt time.Time
	Token     string
}

// IsStaff reports whether the session grants admin panel access.
func (s *Session) IsStaff() bool {
	return s != nil && model.RoleAtLeast(s.Role, model.RoleStaff)
}

// RequireStaff returns ErrUnauthorized unless sess is a staff session.
func RequireStaff(sess *Session) error {
	if !sess.IsStaff() {
		return ErrUnauthorized
	}
	return nil
}

// Gate authenticates staff users and manages their sessions.
type Gate struct {
	DB       *sql.DB
	Secret   string
	TokenTTL time.Duration
}

// Login checks credentials and starts a session for staff users.
func (g *Gate) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := store.GetUserByUsername(ctx, g.DB, username)
	if errors.Is(err, store.ErrNotFound) {
		// Burn comparable time so unknown usernames are not distinguishable.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "username", username, "reason", "password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsStaff() {
		slog.Warn("login failed", "username", username, "reason", "not staff")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := GenerateToken(g.Secret, user.ID, user.Username, user.Role, g.TokenTTL)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	return sessionFromClaims(claims, token), nil
}

// Authenticate resolves a session token into a session.
func (g *Gate) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := ValidateToken(g.Secret, token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	revoked, err := store.IsTokenRevoked(ctx, g.DB, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if revoked {
		return nil, ErrUnauthorized
	}

	// Accounts deleted or demoted after login lose access immediately.
	user, err := store.GetUser(ctx, g.DB, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	if !user.IsStaff() {
		return nil, ErrUnauthorized
	}

	sess := sessionFromClaims(claims, token)
	sess.Role = user.Role
	return sess, nil
}

// Logout revokes the session. A nil session is a no-op.
func (g *Gate) Logout(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := store.RevokeToken(ctx, g.DB, sess.ID, sess.ExpiresAt); err != nil {
		return err
	}
	slog.Info("user logged out", "user", sess.Username)
	return nil
}

func sessionFromClaims(claims *Claims, token string) *Session {
	sess := &Session{
		ID:       claims.ID,
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		Token:    token,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess
}

// dummyHash is compared against when the username does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("najdeno-placeholder"), bcrypt.DefaultCost)
