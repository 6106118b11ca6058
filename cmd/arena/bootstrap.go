package main

import (
	"context"
	"fmt"
	"os"

	"strategy-arena/internal/agents"
	"strategy-arena/internal/arena"
	"strategy-arena/internal/arena/arenaobs"
	"strategy-arena/internal/events"
	"strategy-arena/internal/explain"
	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/llm/claude"
	"strategy-arena/internal/llm/llmobs"
	"strategy-arena/internal/llm/noop"
	"strategy-arena/internal/llm/openai"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/marketdata"
	"strategy-arena/internal/metrics"
	"strategy-arena/internal/report"
	"strategy-arena/internal/report/reportobs"
	"strategy-arena/internal/roundlog"
	"strategy-arena/internal/store"
	"strategy-arena/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.InitWithConfig(logger.LoadConfigFromEnv()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig reads config.yaml, falling back to built-in defaults when
// the file does not exist.
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn(ctx, "No config.yaml found, running with defaults")
			return store.DefaultConfig(), nil
		}
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldRounds gzips round files past the retention window.
func compressOldRounds(ctx context.Context, cfg *store.Config, audit *roundlog.Logger) {
	if cfg.RoundLog.RetentionDays <= 0 {
		return
	}
	if err := audit.CompressOlder(cfg.RoundLog.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old round logs", "error", err.Error())
	}
}

// buildAgents assembles the competing strategy lineup.
func buildAgents(cfg *store.Config) []interfaces.StrategyAgent {
	return []interfaces.StrategyAgent{
		agents.NewTrendAgent(cfg.Agents.Trend.FastPeriod, cfg.Agents.Trend.SlowPeriod),
		agents.NewMeanReversionAgent(cfg.Agents.MeanReversion.Period, cfg.Agents.MeanReversion.Band),
		agents.NewForecastAgent(cfg.Agents.Forecast.Threshold, cfg.Agents.DedupLimit),
		agents.NewOnChainAgent(cfg.Agents.OnChain.InflowThresholdUSD, cfg.Agents.DedupLimit),
		agents.NewFlowWatcherAgent(cfg.Agents.FlowWatcher.ThresholdUSD, cfg.Agents.DedupLimit),
		agents.NewNewsAgent(cfg.Agents.News.ImpactThreshold, cfg.Agents.News.FedMultiplier, cfg.Agents.DedupLimit),
		agents.NewFedNewsAgent(cfg.Agents.DedupLimit),
		agents.NewSECNewsAgent(cfg.Agents.DedupLimit),
		agents.NewHybridAgent(cfg.Agents.Hybrid.ConfirmationThreshold, cfg.Agents.DedupLimit),
	}
}

// initializeMarketFeed picks the configured price source.
func initializeMarketFeed(ctx context.Context, cfg *store.Config) interfaces.MarketFeed {
	if cfg.Feeds.Market.Source == "BINANCE" {
		logger.Info(ctx, "Using live Binance market stream",
			"url", cfg.Feeds.Market.WebsocketURL,
			"symbols", cfg.Symbols,
		)
		return marketdata.NewBinanceFeed(cfg.Feeds.Market.WebsocketURL, cfg.Symbols)
	}

	logger.Warn(ctx, "Running on the replay market feed - prices are synthetic")
	return marketdata.NewReplayFeed(cfg.Feeds.Market.ReplaySeed)
}

// initializeEventSource picks live upstreams or the seeded generator.
func initializeEventSource(ctx context.Context, cfg *store.Config) interfaces.EventSource {
	if cfg.Mode == "REPLAY" {
		logger.Info(ctx, "Using replay event source")
		return events.NewReplaySource(cfg.Feeds.Market.ReplaySeed)
	}
	return events.NewService(cfg)
}

// initializeExplainer wires the configured LLM delegate, if any, behind
// the deterministic explanation provider.
func initializeExplainer(ctx context.Context, cfg *store.Config, mtr *metrics.Metrics) *explain.Provider {
	var delegate interfaces.Explainer

	switch cfg.LLM.Provider {
	case "OPENAI":
		delegate = openai.NewOpenAIExplainer(cfg)
	case "CLAUDE":
		delegate = claude.NewClaudeExplainer(cfg)
	default:
		delegate = noop.NewNoopExplainer()
		logger.Info(ctx, "No LLM provider configured - explanations use the deterministic template")
	}

	return explain.NewProvider(llmobs.Wrap(delegate), mtr)
}

// initializeArena builds the battle arena with observability.
func initializeArena(cfg *store.Config, lineup []interfaces.StrategyAgent, explainer *explain.Provider, audit *roundlog.Logger, mtr *metrics.Metrics) interfaces.Arena {
	return arenaobs.Wrap(arena.New(cfg, lineup, explainer, audit, mtr))
}

// initializeReporter builds the daily CSV reporter with observability.
func initializeReporter(audit *roundlog.Logger) interfaces.Reporter {
	return reportobs.Wrap(report.NewSummarizer(audit, ""))
}
