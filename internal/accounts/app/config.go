package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env       string `envconfig:"ENV"        default:"development"`
	Port      int    `envconfig:"PORT"       default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL"  default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// DatabaseDriver selects the store: sqlite (DatabaseFile) or postgres
	// (DatabaseURL).
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabaseFile   string `envconfig:"DATABASE_FILE"   default:"accounts.db"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`

	// RedisAddr empty disables caching.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret          string        `envconfig:"JWT_SECRET"           required:"true"`
	RefreshTokenSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTokenTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL"     default:"1h"`
	RefreshTokenTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL"    default:"168h"`

	PasswordAlgorithm string `envconfig:"PASSWORD_ALGORITHM" default:"argon2id"`
	BcryptCost        int    `envconfig:"BCRYPT_COST"        default:"12"`
	Argon2MemoryKiB   uint32 `envconfig:"ARGON2_MEMORY_KIB"  default:"19456"`
	Argon2Iterations  uint32 `envconfig:"ARGON2_ITERATIONS"  default:"2"`
	Argon2Parallelism uint8  `envconfig:"ARGON2_PARALLELISM" default:"1"`
	PasswordPepper    string `envconfig:"PASSWORD_PEPPER"`

	// BootstrapToken empty disables POST /api/bootstrap.
	BootstrapToken string `envconfig:"BOOTSTRAP_TOKEN"`

	ProfileCacheTTL time.Duration `envconfig:"PROFILE_CACHE_TTL" default:"300s"`
	ListingCacheTTL time.Duration `envconfig:"LISTING_CACHE_TTL" default:"60s"`

	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT"       default:"30s"`
	ShutdownGracePeriod  time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`
	HousekeepingInterval time.Duration `envconfig:"HOUSEKEEPING_INTERVAL" default:"1h"`

	AllowedHosts []string `envconfig:"ALLOWED_HOSTS"`
}

// LoadConfig reads configuration from environment variables and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings LoadConfig cannot express as tags.
func (c Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}
	if len(c.RefreshTokenSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q is not one of sqlite, postgres", c.DatabaseDriver))
	}

	switch cryptox.Algorithm(strings.ToLower(c.PasswordAlgorithm)) {
	case cryptox.Argon2id, cryptox.Bcrypt:
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_ALGORITHM %q is not one of argon2id, bcrypt", c.PasswordAlgorithm))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}

	return errors.Join(errs...)
}

// IsProduction returns true when the application runs in production.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// PasswordHasher builds the hasher described by the config.
func (c Config) PasswordHasher() *cryptox.PasswordHasher {
	return &cryptox.PasswordHasher{
		Algorithm:   cryptox.Algorithm(strings.ToLower(c.PasswordAlgorithm)),
		Memory:      c.Argon2MemoryKiB,
		Iterations:  c.Argon2Iterations,
		Parallelism: c.Argon2Parallelism,
		BcryptCost:  c.BcryptCost,
		Pepper:      c.PasswordPepper,
	}
}
