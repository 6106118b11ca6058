package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigPassesValidation(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if c.Mode != "REPLAY" {
		t.Errorf("mode = %s, want REPLAY", c.Mode)
	}
	if c.Arena.Epsilon != 0.15 {
		t.Errorf("epsilon = %v, want 0.15", c.Arena.Epsilon)
	}
	if c.Arena.WeightConfidence != 0.5 || c.Arena.WeightWinRate != 0.3 || c.Arena.WeightEpochWins != 0.2 {
		t.Errorf("selection weights = %v/%v/%v, want 0.5/0.3/0.2",
			c.Arena.WeightConfidence, c.Arena.WeightWinRate, c.Arena.WeightEpochWins)
	}
	if c.Agents.Trend.FastPeriod != 10 || c.Agents.Trend.SlowPeriod != 30 {
		t.Errorf("trend periods = %d/%d, want 10/30", c.Agents.Trend.FastPeriod, c.Agents.Trend.SlowPeriod)
	}
	if c.Agents.MeanReversion.Period != 20 || c.Agents.MeanReversion.Band != 2.0 {
		t.Errorf("mean reversion = %d/%v, want 20/2.0", c.Agents.MeanReversion.Period, c.Agents.MeanReversion.Band)
	}
	if c.Agents.OnChain.InflowThresholdUSD != 400_000_000 {
		t.Errorf("inflow threshold = %v, want 400M", c.Agents.OnChain.InflowThresholdUSD)
	}
	if c.Agents.FlowWatcher.ThresholdUSD != 200_000_000 {
		t.Errorf("flow threshold = %v, want 200M", c.Agents.FlowWatcher.ThresholdUSD)
	}
	if c.Agents.Hybrid.ConfirmationThreshold != 2 {
		t.Errorf("confirmation threshold = %d, want 2", c.Agents.Hybrid.ConfirmationThreshold)
	}
	if len(c.Symbols) != 1 || c.Symbols[0] != "BTCUSDT" {
		t.Errorf("symbols = %v, want [BTCUSDT]", c.Symbols)
	}
}

func TestLoadConfigFillsUnsetFields(t *testing.T) {
	path := writeConfig(t, `
mode: LIVE
symbols: [ETHUSDT, SOLUSDT]
arena:
  epsilon: 0.25
agents:
  trend:
    fast_period: 5
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Mode != "LIVE" {
		t.Errorf("mode = %s, want LIVE", c.Mode)
	}
	if c.Arena.Epsilon != 0.25 {
		t.Errorf("epsilon = %v, want 0.25", c.Arena.Epsilon)
	}
	if c.Agents.Trend.FastPeriod != 5 || c.Agents.Trend.SlowPeriod != 30 {
		t.Errorf("trend periods = %d/%d, want 5/30", c.Agents.Trend.FastPeriod, c.Agents.Trend.SlowPeriod)
	}
	if c.Agents.Forecast.Threshold != 0.65 {
		t.Errorf("forecast threshold = %v, want default 0.65", c.Agents.Forecast.Threshold)
	}
	if c.RoundLog.Dir != "rounds" || c.RoundLog.RetentionDays != 7 {
		t.Errorf("roundlog = %s/%d, want rounds/7", c.RoundLog.Dir, c.RoundLog.RetentionDays)
	}
}

func TestLoadConfigMissingFileReportsNotExist(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want a not-exist error so callers can fall back to defaults, got %v", err)
	}
}

func TestStrictModeForcesThreeConfirmations(t *testing.T) {
	path := writeConfig(t, `
agents:
  hybrid:
    confirmation_threshold: 2
    strict: true
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Agents.Hybrid.ConfirmationThreshold != 3 {
		t.Errorf("strict threshold = %d, want 3", c.Agents.Hybrid.ConfirmationThreshold)
	}
}

func TestWeightsDefaultAsAGroup(t *testing.T) {
	path := writeConfig(t, `
arena:
  weight_confidence: 1.0
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// Overriding one weight opts out of the default set entirely.
	if c.Arena.WeightConfidence != 1.0 || c.Arena.WeightWinRate != 0 || c.Arena.WeightEpochWins != 0 {
		t.Errorf("weights = %v/%v/%v, want 1.0/0/0",
			c.Arena.WeightConfidence, c.Arena.WeightWinRate, c.Arena.WeightEpochWins)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "PAPER" }},
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"epsilon above one", func(c *Config) { c.Arena.Epsilon = 1.5 }},
		{"negative weight", func(c *Config) { c.Arena.WeightWinRate = -0.1 }},
		{"fast period not below slow", func(c *Config) { c.Agents.Trend.FastPeriod = 30 }},
		{"forecast threshold too low", func(c *Config) { c.Agents.Forecast.Threshold = 0.4 }},
		{"confirmation threshold too high", func(c *Config) { c.Agents.Hybrid.ConfirmationThreshold = 4 }},
		{"unknown market source", func(c *Config) { c.Feeds.Market.Source = "KRAKEN" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("Validate accepted a config with %s", tc.name)
			}
		})
	}
}
