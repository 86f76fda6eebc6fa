package app

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-access-secret-0123456789"
	refreshSecret = "refresh-secret-refresh-secret-0123456789"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", accessSecret)
	t.Setenv("REFRESH_TOKEN_SECRET", refreshSecret)
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "accounts.db", cfg.DatabaseFile)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, 300*time.Second, cfg.ProfileCacheTTL)
	require.Equal(t, 60*time.Second, cfg.ListingCacheTTL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://accounts@localhost/accounts")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("ALLOWED_HOSTS", "accounts.example.com,api.example.com")
	t.Setenv("PASSWORD_ALGORITHM", "bcrypt")
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.True(t, cfg.IsProduction())
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, []string{"accounts.example.com", "api.example.com"}, cfg.AllowedHosts)

	h := cfg.PasswordHasher()
	require.Equal(t, cryptox.Bcrypt, h.Algorithm)
	require.Equal(t, 10, h.BcryptCost)
}

func TestLoadConfigMissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Port:               8080,
		DatabaseDriver:     DriverSQLite,
		DatabaseFile:       "accounts.db",
		JWTSecret:          accessSecret,
		RefreshTokenSecret: refreshSecret,
		PasswordAlgorithm:  "argon2id",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short access secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"short refresh secret", func(c *Config) { c.RefreshTokenSecret = "short" }, "REFRESH_TOKEN_SECRET"},
		{"same secrets", func(c *Config) { c.RefreshTokenSecret = c.JWTSecret }, "must differ"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "DATABASE_URL"},
		{"sqlite without file", func(c *Config) { c.DatabaseFile = "" }, "DATABASE_FILE"},
		{"unknown algorithm", func(c *Config) { c.PasswordAlgorithm = "md5" }, "PASSWORD_ALGORITHM"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, strings.Contains(err.Error(), tt.want), "got %q", err.Error())
		})
	}
}
