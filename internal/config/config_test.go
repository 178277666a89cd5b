package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "diamond", cfg.Search.Method)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 1, cfg.Pipeline.Threads)
	assert.Equal(t, 40.0, cfg.Pipeline.Cutoffs.Identity)
	assert.Equal(t, 50.0, cfg.Pipeline.Cutoffs.Bitscore)
	assert.Equal(t, 0.01, cfg.Pipeline.Cutoffs.EValue)
	assert.Equal(t, 70.0, cfg.Pipeline.Cutoffs.Coverage)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KANNO_SEARCH_METHOD", "blast")
	t.Setenv("KANNO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "blast", cfg.Search.Method)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Search.Method = "usearch"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search method")

	cfg = valid()
	cfg.Pipeline.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Pipeline.Cutoffs.Identity = 120
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Pipeline.Cutoffs.EValue = -1
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Store.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}
