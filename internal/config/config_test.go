package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macrograph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
store:
  backend: redis
  redis:
    addr: cache:6379
    db: 2
    ttl: 1h
dispatch:
  pacing: 0s
`), 0644))

	env := map[string]string{
		"MACROGRAPH_STORE_REDIS_DB":       "5",
		"MACROGRAPH_TRACING_SAMPLE_RATIO": "0.25",
		"MACROGRAPH_METRICS_ENABLED":      "false",
		"MACROGRAPH_NATS_SUBJECT":         "scene.commands",
	}
	cfg, err := load(path, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 5, cfg.Store.Redis.DB, "environment wins over the file")
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "macrograph:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, time.Duration(0), cfg.Dispatch.Pacing)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "scene.commands", cfg.NATS.Subject)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml")},
		{"malformed yaml", write("bad.yaml", "log: [")},
		{"unknown key", write("unknown.yaml", "colour: blue\n")},
		{"unknown backend", write("backend.yaml", "store:\n  backend: sqlite\n")},
		{"sample ratio", write("ratio.yaml", "tracing:\n  sample_ratio: 2\n")},
		{"log level", write("level.yaml", "log:\n  level: loud\n")},
		{"log format", write("format.yaml", "log:\n  format: xml\n")},
		{"short key", write("key.yaml", "store:\n  encryption_key: abcd\n")},
		{"non-hex key", write("hex.yaml", "store:\n  encryption_key: zz\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.path, noEnv)
			assert.Error(t, err)
		})
	}
}

func TestStoreConfig_Key(t *testing.T) {
	key, err := StoreConfig{}.Key()
	require.NoError(t, err)
	assert.Nil(t, key)

	hexKey := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	cfg, err := load("", func(k string) (string, bool) {
		if k == "MACROGRAPH_STORE_ENCRYPTION_KEY" {
			return hexKey, true
		}
		return "", false
	})
	require.NoError(t, err)
	key, err = cfg.Store.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0x1f), key[31])
}
