package portal

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends selectable with ADOPTIONOS_STORAGE.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config carries environment-driven settings for the portal process.
type Config struct {
	Port           string        `env:"PORT"                        envDefault:"8080"`
	APIURL         string        `env:"ADOPTIONOS_API_URL"          envDefault:"http://localhost:3000"`
	Storage        string        `env:"ADOPTIONOS_STORAGE"          envDefault:"memory"`
	StorageDir     string        `env:"ADOPTIONOS_STORAGE_DIR"      envDefault:".adoptionos"`
	SQLitePath     string        `env:"ADOPTIONOS_SQLITE_PATH"      envDefault:"adoptionos.db"`
	PostgresDSN    string        `env:"POSTGRES_DSN"`
	SessionTTL     time.Duration `env:"ADOPTIONOS_SESSION_TTL"      envDefault:"24h"`
	IdleTTL        time.Duration `env:"ADOPTIONOS_IDLE_TTL"         envDefault:"30m"`
	RequestTimeout time.Duration `env:"ADOPTIONOS_REQUEST_TIMEOUT"  envDefault:"15s"`
	MetricsBeacon  bool          `env:"ADOPTIONOS_METRICS_BEACON"   envDefault:"true"`
	SecureCookies  bool          `env:"ADOPTIONOS_SECURE_COOKIES"`
	Environment    string        `env:"ENVIRONMENT"                 envDefault:"local"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure   bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	LogLevel       string        `env:"LOG_LEVEL"                   envDefault:"info"`
}

// LoadConfig reads the dotenv files (default .env; missing files are ignored), then the
// environment, and validates the result. Variables already set win over dotenv values.
func LoadConfig(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageMemory, StorageFile, StorageSQLite:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required when ADOPTIONOS_STORAGE=postgres")
		}
	default:
		return fmt.Errorf("ADOPTIONOS_STORAGE must be one of memory, file, sqlite, postgres; got %q", c.Storage)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ADOPTIONOS_API_URL must be an absolute URL; got %q", c.APIURL)
	}
	if c.SessionTTL <= 0 || c.IdleTTL <= 0 {
		return fmt.Errorf("ADOPTIONOS_SESSION_TTL and ADOPTIONOS_IDLE_TTL must be positive")
	}
	return nil
}
