package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "sqlite", cfg.Storage.SQL.Driver)
	assert.Equal(t, time.Hour, cfg.Storage.SQL.ConnMaxLifetime)
	assert.Equal(t, "lines", cfg.Game.WinScheme)
	assert.Equal(t, 12, cfg.Game.FreePosition)
	assert.True(t, cfg.Game.ShuffleBoards)
	assert.Equal(t, 10, cfg.Game.MaxWinners)
	assert.True(t, cfg.Game.AllowDuplicateTargets)
	assert.True(t, cfg.Game.SeedTasks)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bingo.yaml")
	yaml := `
server:
  port: 9090
storage:
  type: sql
  sql:
    driver: postgres
    dsn: postgres://bingo@localhost/bingo
game:
  win_scheme: multi
  free_position: -1
  max_winners: 3
cors:
  allowed_origins:
    - https://fest.example.org
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sql", cfg.Storage.Type)
	assert.Equal(t, "postgres", cfg.Storage.SQL.Driver)
	assert.Equal(t, "multi", cfg.Game.WinScheme)
	assert.Equal(t, -1, cfg.Game.FreePosition)
	assert.Equal(t, 3, cfg.Game.MaxWinners)
	assert.Equal(t, []string{"https://fest.example.org"}, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BINGO_SERVER_PORT", "7070")
	t.Setenv("BINGO_GAME_WIN_SCHEME", "multi")
	t.Setenv("BINGO_GAME_FREE_POSITION", "0")
	t.Setenv("BINGO_STORAGE_TYPE", "redis")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "multi", cfg.Game.WinScheme)
	assert.Equal(t, 0, cfg.Game.FreePosition)
	assert.Equal(t, "redis", cfg.Storage.Type)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"storage type", func(c *Config) { c.Storage.Type = "mongo" }},
		{"win scheme", func(c *Config) { c.Game.WinScheme = "pyramid" }},
		{"free position", func(c *Config) { c.Game.FreePosition = 25 }},
		{"max winners", func(c *Config) { c.Game.MaxWinners = 0 }},
		{"rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
