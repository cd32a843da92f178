package config

import (
	"flag"
	"os"
)

// Parse builds the configuration for a command from its arguments and the process environment.
// The -config flag names an optional YAML file. Flags that were set explicitly win over the file
// and the environment. Parse returns the remaining positional arguments.
func Parse(name string, args []string, lookup LookupEnvFunc) (Config, []string, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)

	defaults := Default()
	path := flags.String("config", "", "path to a YAML config file")
	port := flags.Int("port", defaults.Server.Port, "HTTP server port")
	env := flags.String("env", defaults.Server.Env, "environment (development|staging|production)")
	engine := flags.String("store", defaults.Store.Engine, "record store engine (file|memory|postgres)")
	dir := flags.String("store-dir", defaults.Store.Dir, "directory of the file store")
	dsn := flags.String("postgres-dsn", "", "PostgreSQL DSN for the postgres store")
	driver := flags.String("postgres-driver", defaults.Store.Postgres.Driver, "PostgreSQL driver (pgx|sql|sqlx)")
	catalogEnabled := flags.Bool("catalog", defaults.Catalog.Enabled, "enable catalog lookups")
	catalogURL := flags.String("catalog-url", defaults.Catalog.URLTemplate, "catalog URL template containing {isbn}")
	pin := flags.String("pin", "", "4-digit desk PIN")
	logLevel := flags.String("log-level", defaults.Log.Level, "log level (debug|info|warn|error)")
	otelEnabled := flags.Bool("otel", defaults.Observability.Enabled, "export traces and metrics via OTLP")

	if err := flags.Parse(args); err != nil {
		return Config{}, nil, err
	}

	cfg := Default()

	if *path != "" {
		if err := LoadFile(&cfg, *path); err != nil {
			return Config{}, nil, err
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}

	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, nil, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "env":
			cfg.Server.Env = *env
		case "store":
			cfg.Store.Engine = *engine
		case "store-dir":
			cfg.Store.Dir = *dir
		case "postgres-dsn":
			cfg.Store.Postgres.DSN = *dsn
		case "postgres-driver":
			cfg.Store.Postgres.Driver = *driver
		case "catalog":
			cfg.Catalog.Enabled = *catalogEnabled
		case "catalog-url":
			cfg.Catalog.URLTemplate = *catalogURL
		case "pin":
			cfg.Desk.PIN = *pin
		case "log-level":
			cfg.Log.Level = *logLevel
		case "otel":
			cfg.Observability.Enabled = *otelEnabled
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}

	return cfg, flags.Args(), nil
}
