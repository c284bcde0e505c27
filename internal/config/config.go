package config // package config loads application configuration from environment variables

import (
    "os" // os provides access to environment variables

    "github.com/joho/godotenv" // godotenv loads a local .env file into the environment

    "github.com/iliyamo/openday-seat-reservation/internal/logging"
)

// Store drivers accepted in STORE_DRIVER.
const (
    StoreMySQL  = "mysql"
    StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are only required when the
// mysql store driver is selected.
type Config struct {
    Env         string // application environment (e.g. "dev", "prod")
    Port        string // HTTP port to listen on
    StoreDriver string // mysql | memory
    DBUser      string // database username
    DBPass      string // database password (optional)
    DBHost      string // database host address
    DBPort      string // database port number
    DBName      string // database name
    AutoMigrate bool   // apply embedded migrations at startup
    StaticDir   string // directory holding the grid and admin pages
    LogLevel    string // zerolog level
    LogFormat   string // json | console
}

// Load reads a .env file when present, then builds the Config from the
// environment.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
    _ = godotenv.Load() // a missing .env file is fine; real env vars win

    cfg := Config{
        Env:         envStr("APP_ENV", "dev"),
        Port:        envStr("APP_PORT", "3000"),
        StoreDriver: envStr("STORE_DRIVER", StoreMySQL),
        AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
        StaticDir:   envStr("STATIC_DIR", "web"),
        LogLevel:    envStr("LOG_LEVEL", "info"),
        LogFormat:   envStr("LOG_FORMAT", "json"),
    }
    if cfg.StoreDriver == StoreMySQL {
        cfg.DBUser = must("DB_USER")      // database user
        cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
        cfg.DBHost = must("DB_HOST")      // database host
        cfg.DBPort = envStr("DB_PORT", "3306")
        cfg.DBName = must("DB_NAME") // database name
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        logging.Fatal().Str("key", key).Msg("missing required env var")
    }
    return v
}
