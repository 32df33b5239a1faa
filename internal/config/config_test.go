package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/table"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fairholdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
log_level      = "debug"
action_timeout = "5s"

rake {
  cap = 300
  tier "bronze" {
    rate_bps = 500
  }
  tier "gold" {
    min_hands = 1000
    rate_bps  = 300
  }
}

table "high" {
  mode        = "tournament"
  max_seats   = 9
  small_blind = 50
  big_blind   = 100
}

table "low" {
  small_blind = 1
  big_blind   = 2
  buy_in      = 500
  client_seed = "players-choice"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "hands", cfg.HistoryDir)
	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	schedule := cfg.RakeSchedule()
	assert.Equal(t, chips.Amount(300), schedule.Cap)
	assert.Equal(t, chips.BasisPoints(500), schedule.RateFor(10))
	assert.Equal(t, chips.BasisPoints(300), schedule.RateFor(1000))

	high, ok := cfg.Table("high")
	require.True(t, ok)
	assert.Equal(t, int64(10000), high.BuyIn, "buy-in defaults to 100 big blinds")
	assert.Equal(t, "high", high.ClientSeed)
	engineCfg, err := high.Engine()
	require.NoError(t, err)
	assert.Equal(t, table.Tournament, engineCfg.Mode)
	assert.Equal(t, 9, engineCfg.MaxSeats)

	low, _ := cfg.Table("low")
	assert.Equal(t, "cash", low.Mode)
	assert.Equal(t, 6, low.MaxSeats)
	assert.Equal(t, "players-choice", low.ClientSeed)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no tables", func(c *Config) { c.Tables = nil }},
		{"bad timeout", func(c *Config) { c.ActionTimeout = "soon" }},
		{"negative timeout", func(c *Config) { c.ActionTimeout = "-1s" }},
		{"inverted blinds", func(c *Config) { c.Tables[0].BigBlind = 1 }},
		{"too many seats", func(c *Config) { c.Tables[0].MaxSeats = 27 }},
		{"unknown mode", func(c *Config) { c.Tables[0].Mode = "poker" }},
		{"duplicate table", func(c *Config) { c.Tables = append(c.Tables, c.Tables[0]) }},
		{"tiny buy-in", func(c *Config) { c.Tables[0].BuyIn = 1 }},
		{"rake over 100%", func(c *Config) {
			c.Rake = &RakeConfig{Tiers: []TierConfig{{Name: "x", RateBps: 20000}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsBadHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `table "x" { small_blind = `))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `table "x" { big_blind = 2 }`))
	assert.Error(t, err, "small_blind is required")
}
