// Package config loads najdeno settings from defaults, an optional
// najdeno.yaml file, a .env file and NAJDENO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. NAJDENO_SERVER_ADDR.
const EnvPrefix = "NAJDENO"

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Media    MediaConfig
	Log      LogConfig
	Admin    AdminConfig
	Auth     AuthConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Path string
}

type MediaConfig struct {
	Dir string
}

type LogConfig struct {
	// Path is an optional file receiving a copy of all log output.
	Path string
}

type AdminConfig struct {
	// Username of the account created on first run.
	Username string
}

type AuthConfig struct {
	TokenTTL     time.Duration
	CookieSecure bool
}

type SecurityConfig struct {
	CSRFEnabled bool
	// CSRFKey is a hex encoded 32 byte key. Empty means a key generated and
	// kept in the database.
	CSRFKey         string
	LoginRatePerMin int
}

// Load reads configuration. configFile may be empty, in which case
// najdeno.yaml is looked up in the working directory and /etc/najdeno.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("najdeno")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/najdeno/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Database.Path = v.GetString("database.path")
	cfg.Media.Dir = v.GetString("media.dir")
	cfg.Log.Path = v.GetString("log.path")
	cfg.Admin.Username = v.GetString("admin.username")
	cfg.Auth.TokenTTL = v.GetDuration("auth.token_ttl")
	cfg.Auth.CookieSecure = v.GetBool("auth.cookie_secure")
	cfg.Security.CSRFEnabled = v.GetBool("security.csrf_enabled")
	cfg.Security.CSRFKey = v.GetString("security.csrf_key")
	cfg.Security.LoginRatePerMin = v.GetInt("security.login_rate_per_min")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("server.addr must be set")
	case c.Database.Path == "":
		return errors.New("database.path must be set")
	case c.Media.Dir == "":
		return errors.New("media.dir must be set")
	case c.Auth.TokenTTL <= 0:
		return errors.New("auth.token_ttl must be positive")
	case c.Security.CSRFKey != "" && len(c.Security.CSRFKey) != 64:
		return errors.New("security.csrf_key must be 64 hex characters")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", "najdeno.db")
	v.SetDefault("media.dir", "media")
	v.SetDefault("log.path", "")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("security.csrf_enabled", true)
	v.SetDefault("security.csrf_key", "")
	v.SetDefault("security.login_rate_per_min", 10)
}
