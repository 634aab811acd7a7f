package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"testbin"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, 280, c.MaxFactLength)
	assert.Empty(t, c.Backup.Bucket)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		mutate      func(c *Config)
	}{
		{
			name: "all flags",
			args: []string{"-s", "https://reg.example", "-o", "https://facts.example", "-d", "x.db", "-p", "me.json", "-t", "9", "-b", "bkt"},
			mutate: func(c *Config) {
				c.ServerURL = "https://reg.example"
				c.PublicOrigin = "https://facts.example"
				c.DBPath = "x.db"
				c.ProfilePath = "me.json"
				c.RequestTimeout = 9 * time.Second
				c.Backup.Bucket = "bkt"
			},
		},
		{name: "foreign flags ignored", args: []string{"-a", "x", "-s", "https://r"}, mutate: func(c *Config) { c.ServerURL = "https://r" }},
		{name: "bad timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)
			cfg := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}

			want := defaults()
			tt.mutate(want)
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":      "https://reg.example",
		"request_timeout": "12s",
		"max_fact_length": 140,
		"backup":          map[string]any{"bucket": "contacts", "endpoint": "http://minio:9000", "passphrase": "s3cret"},
	})

	t.Run("overlays non-empty values", func(t *testing.T) {
		withArgs(t, "-config", path)
		cfg := defaults()
		parseJson(cfg)

		want := defaults()
		want.ServerURL = "https://reg.example"
		want.RequestTimeout = 12 * time.Second
		want.MaxFactLength = 140
		want.Backup.Bucket = "contacts"
		want.Backup.Endpoint = "http://minio:9000"
		want.Backup.Passphrase = "s3cret"
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("env var names the file", func(t *testing.T) {
		withArgs(t)
		t.Setenv(EnvConfigPath, path)
		cfg := defaults()
		parseJson(cfg)
		assert.Equal(t, "https://reg.example", cfg.ServerURL)
	})

	t.Run("no file leaves config unchanged", func(t *testing.T) {
		withArgs(t)
		t.Setenv(EnvConfigPath, "")
		cfg := defaults()
		parseJson(cfg)
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		withArgs(t, "-c", bad)
		require.Panics(t, func() { parseJson(defaults()) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		withArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))
		require.Panics(t, func() { parseJson(defaults()) })
	})
}
