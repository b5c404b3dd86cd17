package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray najdeno.yaml or .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "najdeno.db", cfg.Database.Path)
	require.Equal(t, "media", cfg.Media.Dir)
	require.Equal(t, "admin", cfg.Admin.Username)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.False(t, cfg.Auth.CookieSecure)
	require.True(t, cfg.Security.CSRFEnabled)
	require.Equal(t, 10, cfg.Security.LoginRatePerMin)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("NAJDENO_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("NAJDENO_AUTH_TOKEN_TTL", "2h")
	t.Setenv("NAJDENO_SECURITY_CSRF_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	require.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	require.False(t, cfg.Security.CSRFEnabled)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/najdeno/items.db
security:
  login_rate_per_min: 3
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/najdeno/items.db", cfg.Database.Path)
	require.Equal(t, 3, cfg.Security.LoginRatePerMin)
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NAJDENO_MEDIA_DIR=/srv/media\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("NAJDENO_MEDIA_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/srv/media", cfg.Media.Dir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t)
	t.Setenv("NAJDENO_SECURITY_CSRF_KEY", "abc")
	_, err := Load("")
	require.ErrorContains(t, err, "csrf_key")
}
