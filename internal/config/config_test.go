package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
store: redis
redis:
  addr: "cache:6379"
  ttl: 24h
  lock: true
history:
  capacity: 20
breaker:
  enabled: true
  timeout: 10s
redact: [phone, "_email$"]
log:
  level: debug
deploy:
  command: ./bin/deploy
  args: [--env, prod]
  timeout: 5s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.Redis.Lock)
	assert.Equal(t, "flowedit:automation:", cfg.Redis.Prefix, "defaults survive partial files")
	assert.Equal(t, 20, cfg.History.Capacity)
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Breaker.Timeout)
	assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)
	assert.Equal(t, []string{"phone", "_email$"}, cfg.Redact)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "./bin/deploy", cfg.Deploy.Command)
	assert.Equal(t, []string{"--env", "prod"}, cfg.Deploy.Args)
	assert.Equal(t, 5*time.Second, cfg.Deploy.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FLOWEDIT_STORE":            "file",
		"FLOWEDIT_FILE_DIR":         "/var/lib/flowedit",
		"FLOWEDIT_HISTORY_CAPACITY": "10",
		"FLOWEDIT_LOG_LEVEL":        "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "/var/lib/flowedit", cfg.File.Dir)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, "info", cfg.Log.Level, "empty values are ignored")

	env["FLOWEDIT_HISTORY_CAPACITY"] = "many"
	assert.Error(t, Default().applyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown store", func(c *Config) { c.Store = "s3" }, "store must be one of: memory file redis"},
		{"empty listen", func(c *Config) { c.Listen = "" }, "listen is required"},
		{"zero capacity", func(c *Config) { c.History.Capacity = 0 }, "history.capacity must be at least 1"},
		{"file without dir", func(c *Config) { c.Store = StoreFile; c.File.Dir = "" }, `file.dir is required for store "file"`},
		{"redis without addr", func(c *Config) { c.Store = StoreRedis; c.Redis.Addr = "" }, `redis.addr is required for store "redis"`},
		{"bad redis addr", func(c *Config) { c.Redis.Addr = "no-port" }, "redis.addr must be host:port"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level must be one of"},
		{"empty redact pattern", func(c *Config) { c.Redact = []string{""} }, "redact[0] is required"},
		{"bad redact pattern", func(c *Config) { c.Redact = []string{"phone", "("} }, "redact[1] is not a valid regular expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
