package config

import (
	"testing"
	"time"

	"sportsviz/etl/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.DatabasePassword)
	assert.Equal(t, 5432, cfg.DatabasePort)
	assert.Equal(t, ranking.OnOrBefore, cfg.ResolveMode)
	assert.Equal(t, ranking.KeepLast, cfg.DuplicatePolicy)
	assert.Equal(t, "strict", cfg.NotableTiePolicy)
	assert.Equal(t, 6*time.Hour, cfg.HistoryTTL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("RESOLVER_MODE", "strictly-before")
	t.Setenv("RESOLVER_DUPLICATE_POLICY", "keep_best")
	t.Setenv("RESOLVER_WORKERS", "8")
	t.Setenv("CACHE_TTL_HISTORY", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ranking.StrictlyBefore, cfg.ResolveMode)
	assert.Equal(t, ranking.KeepBest, cfg.DuplicatePolicy)
	assert.Equal(t, 8, cfg.ResolveWorkers)
	assert.Equal(t, time.Minute, cfg.HistoryTTL())
}

func TestLoad_BadMode(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("RESOLVER_MODE", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabasePassword: "secret",
			ResolveWorkers:   1,
			NotableTiePolicy: "strict",
			OutputDir:        "output",
			WriteCSV:         true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no password", func(c *Config) { c.DatabasePassword = "" }, "DATABASE_PASSWORD"},
		{"no workers", func(c *Config) { c.ResolveWorkers = 0 }, "RESOLVER_WORKERS"},
		{"bad tie policy", func(c *Config) { c.NotableTiePolicy = "loose" }, "NOTABLE_TIE_POLICY"},
		{"no sinks", func(c *Config) { c.WriteCSV = false }, "WRITE_CSV"},
		{"csv without dir", func(c *Config) { c.OutputDir = "" }, "OUTPUT_DIR"},
		{"tables only", func(c *Config) { c.WriteCSV = false; c.WriteTable = true; c.OutputDir = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
