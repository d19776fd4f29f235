package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zn-har/Bingo/internal/model"
)

// EnvPrefix is prepended to every environment override, e.g. BINGO_SERVER_PORT
const EnvPrefix = "BINGO"

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Redis RedisConfig `mapstructure:"redis"`
	SQL   SQLConfig   `mapstructure:"sql"`
}

// RedisConfig holds Redis backend settings
type RedisConfig struct {
	URL           string `mapstructure:"url"`
	PoolSize      int    `mapstructure:"pool_size"`
	MinIdleConns  int    `mapstructure:"min_idle_conns"`
	LedgerRetries int    `mapstructure:"ledger_retries"`
}

// SQLConfig holds relational backend settings
type SQLConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

// GameConfig holds the rules of the game
type GameConfig struct {
	WinScheme             string `mapstructure:"win_scheme"`
	FreePosition          int    `mapstructure:"free_position"`
	ShuffleBoards         bool   `mapstructure:"shuffle_boards"`
	MaxWinners            int    `mapstructure:"max_winners"`
	AllowDuplicateTargets bool   `mapstructure:"allow_duplicate_targets"`
	SeedTasks             bool   `mapstructure:"seed_tasks"`
	QRSize                int    `mapstructure:"qr_size"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig throttles scan submissions per client IP
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// CORSConfig lists browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. With an empty path,
// config.yaml is looked up in ./config and the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	// Zero disables the write deadline so SSE streams stay open
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis.url", "redis://localhost:6379")
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.ledger_retries", 20)
	v.SetDefault("storage.sql.driver", "sqlite")
	v.SetDefault("storage.sql.dsn", "bingo.db")
	v.SetDefault("storage.sql.max_idle_conns", 5)
	v.SetDefault("storage.sql.max_open_conns", 20)
	v.SetDefault("storage.sql.conn_max_lifetime", "1h")
	v.SetDefault("storage.sql.log_level", "warn")

	v.SetDefault("game.win_scheme", string(model.WinSchemeLines))
	v.SetDefault("game.free_position", 12)
	v.SetDefault("game.shuffle_boards", true)
	v.SetDefault("game.max_winners", model.DefaultMaxWinners)
	v.SetDefault("game.allow_duplicate_targets", model.DefaultAllowDuplicateTargets)
	v.SetDefault("game.seed_tasks", true)
	v.SetDefault("game.qr_size", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("cors.allowed_origins", []string{})
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory", "redis", "sql":
	default:
		return fmt.Errorf("invalid storage.type %q: must be memory, redis or sql", c.Storage.Type)
	}
	if !model.WinScheme(c.Game.WinScheme).IsValid() {
		return fmt.Errorf("invalid game.win_scheme %q: must be lines or multi", c.Game.WinScheme)
	}
	if c.Game.FreePosition < model.NoFreePosition || c.Game.FreePosition >= model.BoardCells {
		return fmt.Errorf("invalid game.free_position %d: must be -1 or 0-24", c.Game.FreePosition)
	}
	if c.Game.MaxWinners < 1 {
		return fmt.Errorf("invalid game.max_winners %d: %w", c.Game.MaxWinners, model.ErrInvalidMaxWinners)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("invalid rate_limit.requests_per_minute %d", c.RateLimit.RequestsPerMinute)
	}
	return nil
}
