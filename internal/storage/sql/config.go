package sql

import "time"

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection settings
type Config struct {
	// Driver selects the dialect: "sqlite" or "postgres"
	Driver string
	// DSN is the driver-specific data source name
	DSN string

	// Pool settings. SQLite is always limited to a single open connection.
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// LogLevel is one of silent, error, warn, info
	LogLevel string
}

// DefaultConfig returns sensible defaults for a local SQLite database
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             "bingo.db",
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Hour,
		LogLevel:        "warn",
	}
}
