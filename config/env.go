package config

import (
	"errors"
	"fmt"
	"strconv"
)

// EnvPrefix prefixes all environment variables read by ApplyEnv.
const EnvPrefix = "LIBRARYDESK_"

// ErrInvalidEnvValue is returned when an environment variable cannot be parsed.
var ErrInvalidEnvValue = errors.New("invalid environment variable value")

// LookupEnvFunc has the signature of os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// ApplyEnv overlays the LIBRARYDESK_* environment variables onto cfg.
func ApplyEnv(cfg *Config, lookup LookupEnvFunc) error {
	var errs []error

	str := func(name string, target *string) {
		if value, ok := lookup(EnvPrefix + name); ok {
			*target = value
		}
	}

	num := func(name string, target *int) {
		if value, ok := lookup(EnvPrefix + name); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrInvalidEnvValue, EnvPrefix, name, value))
				return
			}
			*target = parsed
		}
	}

	boolean := func(name string, target *bool) {
		if value, ok := lookup(EnvPrefix + name); ok {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrInvalidEnvValue, EnvPrefix, name, value))
				return
			}
			*target = parsed
		}
	}

	num("PORT", &cfg.Server.Port)
	str("ENV", &cfg.Server.Env)
	str("STORE_ENGINE", &cfg.Store.Engine)
	str("STORE_DIR", &cfg.Store.Dir)
	str("POSTGRES_DSN", &cfg.Store.Postgres.DSN)
	str("POSTGRES_DRIVER", &cfg.Store.Postgres.Driver)
	str("POSTGRES_TABLE", &cfg.Store.Postgres.Table)
	boolean("CATALOG_ENABLED", &cfg.Catalog.Enabled)
	str("CATALOG_URL", &cfg.Catalog.URLTemplate)
	str("PIN", &cfg.Desk.PIN)
	num("RECENT_LIMIT", &cfg.Desk.RecentLimit)
	num("RETRY_ATTEMPTS", &cfg.Desk.RetryAttempts)
	boolean("OTEL_ENABLED", &cfg.Observability.Enabled)
	str("OTLP_ENDPOINT", &cfg.Observability.OTLPEndpoint)
	str("OTEL_LOG_BRIDGE", &cfg.Observability.LogBridge)
	str("LOG_LEVEL", &cfg.Log.Level)

	return errors.Join(errs...)
}
