package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bara-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	assert.InDelta(t, 0.4, cfg.Matching.PartyWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Matching.TemporalWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Matching.ItemWeight, 1e-9)
	assert.InDelta(t, 0.6, cfg.Matching.AssignThreshold, 1e-9)
	assert.InDelta(t, 0.01, cfg.Matching.TieBand, 1e-9)
	assert.Equal(t, 90, cfg.Matching.CandidateDaysBack)
	assert.Equal(t, 200, cfg.Matching.CandidateLimit)

	assert.Equal(t, 100, cfg.Scheduler.RescoreBatchSize)
	assert.Equal(t, 50, cfg.Scheduler.ValidationBatchSize)
}

func TestValidate_RejectsBadWeights(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Matching.PartyWeight = 0.8

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.Driver = "mysql"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
}

func TestDSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "bara",
			Password: "p@ss/word",
			DBName:   "bara",
			SSLMode:  "disable",
		}
		dsn := d.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "p%40ss%2Fword")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("sqlite returns file path", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", SQLitePath: "/tmp/bara.db"}
		assert.Equal(t, "/tmp/bara.db", d.DSN())
	})
}
