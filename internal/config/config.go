// Package config loads table and rake settings from HCL.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/fairholdem/internal/chips"
	"github.com/lox/fairholdem/internal/rake"
	"github.com/lox/fairholdem/internal/table"
)

// Config represents the complete configuration file
type Config struct {
	LogLevel      string        `hcl:"log_level,optional"`
	HistoryDir    string        `hcl:"history_dir,optional"`
	ActionTimeout string        `hcl:"action_timeout,optional"`
	Rake          *RakeConfig   `hcl:"rake,block"`
	Tables        []TableConfig `hcl:"table,block"`
}

// RakeConfig is the house cut schedule. Amounts are in the smallest unit.
type RakeConfig struct {
	Cap   int64        `hcl:"cap,optional"`
	Tiers []TierConfig `hcl:"tier,block"`
}

// TierConfig is one loyalty tier; rate_bps is in basis points (500 = 5%).
type TierConfig struct {
	Name     string `hcl:"name,label"`
	MinHands int    `hcl:"min_hands,optional"`
	RateBps  int64  `hcl:"rate_bps"`
}

// TableConfig defines one table
type TableConfig struct {
	Name       string `hcl:"name,label"`
	Mode       string `hcl:"mode,optional"`
	MaxSeats   int    `hcl:"max_seats,optional"`
	SmallBlind int64  `hcl:"small_blind"`
	BigBlind   int64  `hcl:"big_blind"`
	BuyIn      int64  `hcl:"buy_in,optional"`
	ClientSeed string `hcl:"client_seed,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		HistoryDir:    "hands",
		ActionTimeout: "30s",
		Tables: []TableConfig{
			{
				Name:       "main",
				Mode:       "cash",
				MaxSeats:   6,
				SmallBlind: 5,
				BigBlind:   10,
				BuyIn:      1000,
			},
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HistoryDir == "" {
		c.HistoryDir = "hands"
	}
	if c.ActionTimeout == "" {
		c.ActionTimeout = "30s"
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Mode == "" {
			t.Mode = "cash"
		}
		if t.MaxSeats == 0 {
			t.MaxSeats = 6
		}
		if t.BuyIn == 0 {
			t.BuyIn = t.BigBlind * 100 // 100 big blinds
		}
		if t.ClientSeed == "" {
			t.ClientSeed = t.Name
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("table %s: defined twice", t.Name)
		}
		seen[t.Name] = true
		if _, err := t.Engine(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		if t.BuyIn < t.BigBlind {
			return fmt.Errorf("table %s: buy-in must cover the big blind", t.Name)
		}
	}

	if err := c.RakeSchedule().Validate(); err != nil {
		return err
	}
	return nil
}

// Timeout parses the per-action timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.ActionTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid action_timeout %q: %w", c.ActionTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("action_timeout must be positive, got %s", d)
	}
	return d, nil
}

// RakeSchedule converts the rake block. No block means no rake.
func (c *Config) RakeSchedule() rake.Schedule {
	if c.Rake == nil {
		return rake.None
	}
	s := rake.Schedule{Cap: chips.Amount(c.Rake.Cap)}
	for _, t := range c.Rake.Tiers {
		s.Tiers = append(s.Tiers, rake.Tier{
			Name:     t.Name,
			MinHands: t.MinHands,
			Rate:     chips.BasisPoints(t.RateBps),
		})
	}
	return s
}

// Engine converts the block into the engine's table parameters.
func (t TableConfig) Engine() (table.Config, error) {
	mode, err := table.ParseMode(t.Mode)
	if err != nil {
		return table.Config{}, err
	}
	cfg := table.Config{
		ID:         t.Name,
		Mode:       mode,
		MaxSeats:   t.MaxSeats,
		SmallBlind: chips.Amount(t.SmallBlind),
		BigBlind:   chips.Amount(t.BigBlind),
	}
	return cfg, cfg.Validate()
}

// Table returns a table configuration by name
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}
