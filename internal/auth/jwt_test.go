package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, issued, err := GenerateToken(secret, 1, "admin", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.UserID)
	require.Equal(t, "admin", claims.Username)
	require.Equal(t, model.RoleAdmin, claims.Role)
	require.Equal(t, issued.ID, claims.ID)
	require.NotEmpty(t, claims.ID)
}

func TestTokensHaveUniqueIDs(t *testing.T) {
	_, a, err := GenerateToken("s", 1, "a", model.RoleStaff, time.Hour)
	require.NoError(t, err)
	_, b, err := GenerateToken("s", 1, "a", model.RoleStaff, time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("secret1", 1, "admin", model.RoleAdmin, time.Hour)

	_, err := ValidateToken("secret2", token)
	require.Error(t, err)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = ValidateToken("s", token)
	require.Error(t, err)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = ValidateToken("s", token)
	require.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	_, claims, err := GenerateToken("test", 1, "test", model.RoleStaff, 0)
	require.NoError(t, err)

	require.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}
