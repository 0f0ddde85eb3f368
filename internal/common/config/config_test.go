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
	cfg, err := LoadWithPath(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "http://localhost:4000", cfg.Board.StoreURL)
	assert.Equal(t, 5, cfg.Board.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Board.RequestTimeoutDuration())
	assert.False(t, cfg.Board.Rebalance.Enabled)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9090
board:
  storeUrl: http://store.internal:4000
  pageSize: 20
  rebalance:
    enabled: true
redis:
  addr: localhost:6379
  ttl: 15
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cfg, err := LoadWithPath(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://store.internal:4000", cfg.Board.StoreURL)
	assert.Equal(t, 20, cfg.Board.PageSize)
	assert.True(t, cfg.Board.Rebalance.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Redis.TTLDuration())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TASKBOARD_STORE_URL", "http://env-store:4000")
	t.Setenv("TASKBOARD_SERVER_PORT", "4100")

	cfg, err := LoadWithPath(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://env-store:4000", cfg.Board.StoreURL)
	assert.Equal(t, 4100, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0},
		Database: DatabaseConfig{Driver: "mysql"},
		Logging:  LoggingConfig{Level: "loud", Format: "xml"},
		Board:    BoardConfig{PageSize: 0, RequestTimeout: 0},
	}

	err := validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "server.port")
	assert.Contains(t, msg, "database.driver")
	assert.Contains(t, msg, "logging.level")
	assert.Contains(t, msg, "logging.format")
	assert.Contains(t, msg, "board.storeUrl")
	assert.Contains(t, msg, "board.pageSize")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "tasks", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=tasks sslmode=disable", d.DSN())
}
