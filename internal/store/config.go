package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode         string   `yaml:"mode"`
	RoundSeconds int      `yaml:"round_seconds"`
	Symbols      []string `yaml:"symbols"`

	Arena struct {
		Epsilon          float64 `yaml:"epsilon"`
		WeightConfidence float64 `yaml:"weight_confidence"`
		WeightWinRate    float64 `yaml:"weight_win_rate"`
		WeightEpochWins  float64 `yaml:"weight_epoch_wins"`
		Seed             int64   `yaml:"seed"`
		HistoryLimit     int     `yaml:"history_limit"`
	} `yaml:"arena"`

	Agents struct {
		Trend struct {
			FastPeriod int `yaml:"fast_period"`
			SlowPeriod int `yaml:"slow_period"`
		} `yaml:"trend"`
		MeanReversion struct {
			Period int     `yaml:"period"`
			Band   float64 `yaml:"band"`
		} `yaml:"mean_reversion"`
		Forecast struct {
			Threshold float64 `yaml:"threshold"`
		} `yaml:"forecast"`
		OnChain struct {
			InflowThresholdUSD float64 `yaml:"inflow_threshold_usd"`
		} `yaml:"onchain"`
		FlowWatcher struct {
			ThresholdUSD float64 `yaml:"threshold_usd"`
		} `yaml:"flow_watcher"`
		News struct {
			ImpactThreshold float64 `yaml:"impact_threshold"`
			FedMultiplier   float64 `yaml:"fed_multiplier"`
		} `yaml:"news"`
		Hybrid struct {
			ConfirmationThreshold int  `yaml:"confirmation_threshold"`
			Strict                bool `yaml:"strict"`
		} `yaml:"hybrid"`
		DedupLimit int `yaml:"dedup_limit"`
	} `yaml:"agents"`

	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Feeds struct {
		Market struct {
			Source       string `yaml:"source"`
			WebsocketURL string `yaml:"websocket_url"`
			ReplaySeed   int64  `yaml:"replay_seed"`
		} `yaml:"market"`
		Forecast struct {
			Enabled     bool   `yaml:"enabled"`
			BaseURL     string `yaml:"base_url"`
			CacheTTLSec int    `yaml:"cache_ttl_sec"`
		} `yaml:"forecast"`
		OnChain struct {
			Enabled     bool   `yaml:"enabled"`
			BaseURL     string `yaml:"base_url"`
			CacheTTLSec int    `yaml:"cache_ttl_sec"`
		} `yaml:"onchain"`
		News struct {
			Enabled     bool `yaml:"enabled"`
			CacheTTLSec int  `yaml:"cache_ttl_sec"`
		} `yaml:"news"`
	} `yaml:"feeds"`

	RoundLog struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"roundlog"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

func (c *Config) Validate() error {
	if c.Mode != "REPLAY" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'REPLAY' or 'LIVE'", c.Mode)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.Arena.Epsilon < 0 || c.Arena.Epsilon > 1 {
		return fmt.Errorf("arena.epsilon must be between 0-1, got %.2f", c.Arena.Epsilon)
	}
	if c.Arena.WeightConfidence < 0 || c.Arena.WeightWinRate < 0 || c.Arena.WeightEpochWins < 0 {
		return errors.New("arena selection weights must be non-negative")
	}
	if c.Arena.WeightConfidence+c.Arena.WeightWinRate+c.Arena.WeightEpochWins <= 0 {
		return errors.New("arena selection weights must not all be zero")
	}
	if c.Agents.Trend.FastPeriod <= 0 || c.Agents.Trend.SlowPeriod <= c.Agents.Trend.FastPeriod {
		return fmt.Errorf("agents.trend periods must satisfy 0 < fast < slow, got %d/%d",
			c.Agents.Trend.FastPeriod, c.Agents.Trend.SlowPeriod)
	}
	if c.Agents.MeanReversion.Period < 2 {
		return fmt.Errorf("agents.mean_reversion.period must be >= 2, got %d", c.Agents.MeanReversion.Period)
	}
	if c.Agents.MeanReversion.Band <= 0 {
		return fmt.Errorf("agents.mean_reversion.band must be positive, got %.2f", c.Agents.MeanReversion.Band)
	}
	if c.Agents.Forecast.Threshold <= 0.5 || c.Agents.Forecast.Threshold >= 1 {
		return fmt.Errorf("agents.forecast.threshold must be between 0.5-1, got %.2f", c.Agents.Forecast.Threshold)
	}
	if t := c.Agents.Hybrid.ConfirmationThreshold; t < 1 || t > 3 {
		return fmt.Errorf("agents.hybrid.confirmation_threshold must be between 1-3, got %d", t)
	}
	if c.Feeds.Market.Source != "REPLAY" && c.Feeds.Market.Source != "BINANCE" {
		return fmt.Errorf("feeds.market.source must be 'REPLAY' or 'BINANCE', got '%s'", c.Feeds.Market.Source)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// DefaultConfig returns a config with every default applied and no file read.
// The replay binary runs off this when no config path is given.
func DefaultConfig() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Mode == "" {
		c.Mode = "REPLAY"
	}
	if c.RoundSeconds == 0 {
		c.RoundSeconds = 15
	}
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"BTCUSDT"}
	}

	// Selection defaults are applied as a group so a partially
	// overridden weight set never mixes with defaults silently.
	if c.Arena.WeightConfidence == 0 && c.Arena.WeightWinRate == 0 && c.Arena.WeightEpochWins == 0 {
		c.Arena.WeightConfidence = 0.5
		c.Arena.WeightWinRate = 0.3
		c.Arena.WeightEpochWins = 0.2
	}
	if c.Arena.Epsilon == 0 {
		c.Arena.Epsilon = 0.15
	}

	if c.Agents.Trend.FastPeriod == 0 {
		c.Agents.Trend.FastPeriod = 10
	}
	if c.Agents.Trend.SlowPeriod == 0 {
		c.Agents.Trend.SlowPeriod = 30
	}
	if c.Agents.MeanReversion.Period == 0 {
		c.Agents.MeanReversion.Period = 20
	}
	if c.Agents.MeanReversion.Band == 0 {
		c.Agents.MeanReversion.Band = 2.0
	}
	if c.Agents.Forecast.Threshold == 0 {
		c.Agents.Forecast.Threshold = 0.65
	}
	if c.Agents.OnChain.InflowThresholdUSD == 0 {
		c.Agents.OnChain.InflowThresholdUSD = 400_000_000
	}
	if c.Agents.FlowWatcher.ThresholdUSD == 0 {
		c.Agents.FlowWatcher.ThresholdUSD = 200_000_000
	}
	if c.Agents.News.ImpactThreshold == 0 {
		c.Agents.News.ImpactThreshold = 2.0
	}
	if c.Agents.News.FedMultiplier == 0 {
		c.Agents.News.FedMultiplier = 1.5
	}
	if c.Agents.Hybrid.ConfirmationThreshold == 0 {
		c.Agents.Hybrid.ConfirmationThreshold = 2
	}
	if c.Agents.Hybrid.Strict {
		c.Agents.Hybrid.ConfirmationThreshold = 3
	}
	if c.Agents.DedupLimit == 0 {
		c.Agents.DedupLimit = 512
	}

	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 256
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}

	if c.Feeds.Market.Source == "" {
		c.Feeds.Market.Source = "REPLAY"
	}
	if c.Feeds.Market.WebsocketURL == "" {
		c.Feeds.Market.WebsocketURL = "wss://stream.binance.com:9443/ws"
	}
	if c.Feeds.Forecast.BaseURL == "" {
		c.Feeds.Forecast.BaseURL = "https://gamma-api.polymarket.com"
	}
	if c.Feeds.Forecast.CacheTTLSec == 0 {
		c.Feeds.Forecast.CacheTTLSec = 300
	}
	if c.Feeds.OnChain.BaseURL == "" {
		c.Feeds.OnChain.BaseURL = "https://api.llama.fi"
	}
	if c.Feeds.OnChain.CacheTTLSec == 0 {
		c.Feeds.OnChain.CacheTTLSec = 60
	}
	if c.Feeds.News.CacheTTLSec == 0 {
		c.Feeds.News.CacheTTLSec = 300
	}

	if c.RoundLog.Dir == "" {
		c.RoundLog.Dir = "rounds"
	}
	if c.RoundLog.RetentionDays == 0 {
		c.RoundLog.RetentionDays = 7
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
}
