package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	configDir = "config"
)

type Config struct {
	Env      string `env:"ENV" env-default:"development"`
	Port     string `env:"PORT" env-default:"8080"`
	AppName  string `env:"APP_NAME" env-default:"EventMappr"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	StoreDriver   string `env:"STORE_DRIVER" env-default:"postgres"`
	DBURL         string `env:"DB_URL"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" env-default:"10"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"eventmappr"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"true"`

	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET"`
	AccessExpiryMin    int    `env:"ACCESS_TOKEN_EXPIRY" env-default:"15"`
	RefreshExpiryMin   int    `env:"REFRESH_TOKEN_EXPIRY" env-default:"10080"`

	BcryptCost   int  `env:"BCRYPT_COST" env-default:"10"`
	CookieSecure bool `env:"COOKIE_SECURE" env-default:"true"`

	// RevokeSessionsOnPasswordChange clears the stored refresh token after a
	// successful password change, ending every other session.
	RevokeSessionsOnPasswordChange bool `env:"REVOKE_SESSIONS_ON_PASSWORD_CHANGE" env-default:"true"`

	NearbyDefaultRadiusKm float64 `env:"NEARBY_DEFAULT_RADIUS_KM" env-default:"10"`
	EventsListLimit       int     `env:"EVENTS_LIST_LIMIT" env-default:"200"`
}

// Load reads config/dev.env (or config/prod.env when ENV=production) if the
// file exists, lets the process environment override it, and validates the
// result.
func Load() (*Config, error) {
	if err := loadFile(FilePath(os.Getenv("ENV"))); err != nil {
		return nil, err
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFile exports the keys of an env file that are not already set in the
// process environment. A missing file is not an error.
func loadFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for key, value := range values {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
	}
	return nil
}

// FilePath returns the env file consulted for the given environment name.
func FilePath(env string) string {
	if strings.EqualFold(env, EnvProduction) {
		return filepath.Join(configDir, "prod.env")
	}
	return filepath.Join(configDir, "dev.env")
}

func (c *Config) Validate() error {
	var errs []error

	if c.AccessTokenSecret == "" {
		errs = append(errs, missing("ACCESS_TOKEN_SECRET"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, missing("REFRESH_TOKEN_SECRET"))
	}

	switch c.StoreDriver {
	case DriverPostgres, DriverMongo:
		if c.DBURL == "" {
			errs = append(errs, missing("DB_URL"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver))
	}

	if c.AccessExpiryMin <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRY must be positive, got %d", c.AccessExpiryMin))
	}
	if c.RefreshExpiryMin <= 0 {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_EXPIRY must be positive, got %d", c.RefreshExpiryMin))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

func (c *Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.AccessExpiryMin) * time.Minute
}

func (c *Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.RefreshExpiryMin) * time.Minute
}

func missing(key string) error {
	return fmt.Errorf("missing required config: %s", key)
}
