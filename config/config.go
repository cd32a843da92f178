package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/library-desk-go/library/deskapi"
)

// Store engines.
const (
	StoreEngineFile     = "file"
	StoreEngineMemory   = "memory"
	StoreEnginePostgres = "postgres"
)

// PostgreSQL drivers.
const (
	PostgresDriverPGX  = "pgx"
	PostgresDriverSQL  = "sql"
	PostgresDriverSQLX = "sqlx"
)

// Log bridges, the adapters that turn contextual desk logs into OpenTelemetry log records.
const (
	LogBridgeSlog = "slog"
	LogBridgeOTel = "otel"
)

var (
	// ErrReadingConfigFileFailed is returned when the YAML file cannot be read or parsed.
	ErrReadingConfigFileFailed = errors.New("reading config file failed")

	// ErrInvalidPort is returned for a port outside 1..65535.
	ErrInvalidPort = errors.New("server port must be between 1 and 65535")

	// ErrUnknownStoreEngine is returned for a store engine other than file, memory or postgres.
	ErrUnknownStoreEngine = errors.New("store engine must be one of file, memory, postgres")

	// ErrMissingStoreDir is returned when the file engine has no directory.
	ErrMissingStoreDir = errors.New("file store needs a directory")

	// ErrMissingPostgresDSN is returned when the postgres engine has no DSN.
	ErrMissingPostgresDSN = errors.New("postgres store needs a dsn")

	// ErrUnknownPostgresDriver is returned for a driver other than pgx, sql or sqlx.
	ErrUnknownPostgresDriver = errors.New("postgres driver must be one of pgx, sql, sqlx")

	// ErrMissingCatalogURL is returned when the catalog is enabled without a URL template.
	ErrMissingCatalogURL = errors.New("enabled catalog needs a url template")

	// ErrInvalidCatalogRate is returned for a non-positive catalog rate limit or burst.
	ErrInvalidCatalogRate = errors.New("catalog requests per second and burst must be positive")

	// ErrInvalidPIN is returned for a desk PIN that is not exactly 4 digits.
	ErrInvalidPIN = errors.New("desk pin must be exactly 4 digits")

	// ErrInvalidRecentLimit is returned for a non-positive recent books limit.
	ErrInvalidRecentLimit = errors.New("recent books limit must be positive")

	// ErrInvalidRetryAttempts is returned for non-positive retry attempts.
	ErrInvalidRetryAttempts = errors.New("retry attempts must be positive")

	// ErrMissingOTLPEndpoint is returned when observability is enabled without an endpoint.
	ErrMissingOTLPEndpoint = errors.New("enabled observability needs an otlp endpoint")

	// ErrUnknownLogBridge is returned for a log bridge other than slog or otel.
	ErrUnknownLogBridge = errors.New("log bridge must be one of slog, otel")

	// ErrUnknownLogLevel is returned for a level other than debug, info, warn or error.
	ErrUnknownLogLevel = errors.New("log level must be one of debug, info, warn, error")
)

// Config is the complete desk configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Store         StoreConfig         `yaml:"store"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Desk          DeskConfig          `yaml:"desk"`
	Students      map[string]string   `yaml:"students"`
	Observability ObservabilityConfig `yaml:"observability"`
	Log           LogConfig           `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StoreConfig selects and configures the record store engine.
type StoreConfig struct {
	Engine   string         `yaml:"engine"`
	Dir      string         `yaml:"dir"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig configures the postgres engine.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Driver   string `yaml:"driver"`
	Table    string `yaml:"table"`
	MaxConns int    `yaml:"maxConns"`
}

// CatalogConfig configures the catalog lookup client.
type CatalogConfig struct {
	Enabled           bool          `yaml:"enabled"`
	URLTemplate       string        `yaml:"urlTemplate"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	CacheTTL          time.Duration `yaml:"cacheTTL"`
}

// DeskConfig configures the desk itself.
type DeskConfig struct {
	PIN           string `yaml:"pin"`
	RecentLimit   int    `yaml:"recentLimit"`
	RetryAttempts int    `yaml:"retryAttempts"`
}

// ObservabilityConfig configures OpenTelemetry export.
type ObservabilityConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"serviceName"`
	LogBridge    string `yaml:"logBridge"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            4000,
			Env:             "development",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     time.Minute,
			ShutdownTimeout: 20 * time.Second,
		},
		Store: StoreConfig{
			Engine: StoreEngineFile,
			Dir:    "./data",
			Postgres: PostgresConfig{
				Driver:   PostgresDriverPGX,
				Table:    "desk_records",
				MaxConns: 8,
			},
		},
		Catalog: CatalogConfig{
			Enabled:           false,
			URLTemplate:       "https://www.googleapis.com/books/v1/volumes?q=isbn:{isbn}",
			RequestsPerSecond: 2,
			Burst:             4,
			CacheTTL:          24 * time.Hour,
		},
		Desk: DeskConfig{
			PIN:           "1234",
			RecentLimit:   10,
			RetryAttempts: 6,
		},
		Students: map[string]string{},
		Observability: ObservabilityConfig{
			OTLPEndpoint: "localhost:4318",
			Insecure:     true,
			ServiceName:  "library-desk",
			LogBridge:    LogBridgeSlog,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingConfigFileFailed, err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return errors.Join(ErrReadingConfigFileFailed, fmt.Errorf("%s: %w", path, err))
	}

	return nil
}

// Validate checks cfg and returns all violations joined.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}

	switch c.Store.Engine {
	case StoreEngineFile:
		if c.Store.Dir == "" {
			errs = append(errs, ErrMissingStoreDir)
		}
	case StoreEngineMemory:
	case StoreEnginePostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, ErrMissingPostgresDSN)
		}

		switch c.Store.Postgres.Driver {
		case PostgresDriverPGX, PostgresDriverSQL, PostgresDriverSQLX:
		default:
			errs = append(errs, ErrUnknownPostgresDriver)
		}
	default:
		errs = append(errs, ErrUnknownStoreEngine)
	}

	if c.Catalog.Enabled {
		if c.Catalog.URLTemplate == "" {
			errs = append(errs, ErrMissingCatalogURL)
		}

		if c.Catalog.RequestsPerSecond <= 0 || c.Catalog.Burst <= 0 {
			errs = append(errs, ErrInvalidCatalogRate)
		}
	}

	if !deskapi.IsValidPIN(c.Desk.PIN) {
		errs = append(errs, ErrInvalidPIN)
	}

	if c.Desk.RecentLimit <= 0 {
		errs = append(errs, ErrInvalidRecentLimit)
	}

	if c.Desk.RetryAttempts <= 0 {
		errs = append(errs, ErrInvalidRetryAttempts)
	}

	if c.Observability.Enabled {
		if c.Observability.OTLPEndpoint == "" {
			errs = append(errs, ErrMissingOTLPEndpoint)
		}

		switch c.Observability.LogBridge {
		case LogBridgeSlog, LogBridgeOTel:
		default:
			errs = append(errs, ErrUnknownLogBridge)
		}
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
