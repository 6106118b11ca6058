package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"strategy-arena/internal/agents"
	"strategy-arena/internal/arena"
	"strategy-arena/internal/events"
	"strategy-arena/internal/explain"
	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/marketdata"
	"strategy-arena/internal/metrics"
	"strategy-arena/internal/roundlog"
	"strategy-arena/internal/store"
	"strategy-arena/internal/types"
)

func main() {
	// Load configuration, falling back to defaults when no file exists
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = store.DefaultConfig()
	}
	cfg.Mode = "REPLAY"

	rounds := 200
	if v := os.Getenv("REPLAY_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rounds = n
		}
	}

	seed := int64(42)
	if v := os.Getenv("REPLAY_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = n
		}
	}
	cfg.Arena.Seed = seed
	cfg.Feeds.Market.ReplaySeed = seed

	symbol := cfg.Symbols[0]

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║              Strategy Arena - Deterministic Replay           ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Symbol:  %s\n", symbol)
	fmt.Printf("Rounds:  %d\n", rounds)
	fmt.Printf("Seed:    %d\n", seed)
	fmt.Println()

	feed := marketdata.NewReplayFeed(seed)
	evsrc := events.NewReplaySource(seed)
	mtr := metrics.New()
	audit := roundlog.New(cfg.RoundLog.Dir)
	explainer := explain.NewProvider(nil, mtr)
	battle := arena.New(cfg, buildLineup(cfg), explainer, audit, mtr)

	ctx := context.Background()
	decided := 0
	var open *types.Signal

	for i := 0; i < rounds; i++ {
		market, err := feed.Snapshot(ctx, symbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Market snapshot failed: %v\n", err)
			os.Exit(1)
		}

		// Mark the previous winner to market before the next battle
		if open != nil {
			dir := 1.0
			if open.Action == types.ActionSell {
				dir = -1
			}
			size := open.Size
			if size == 0 {
				size = 1
			}
			_ = battle.RecordOutcome(ctx, types.TradeOutcome{
				Signal:    *open,
				PnL:       (market.Price - open.Price) * dir * size,
				ExecPrice: market.Price,
				Ts:        market.Ts,
			})
			open = nil
		}

		round, err := battle.RunRound(ctx, market, evsrc.Snapshot(ctx, symbol))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Round failed: %v\n", err)
			os.Exit(1)
		}

		if round.Winner != nil {
			decided++
			open = round.Winner
			fmt.Printf("Epoch %4d: %-4s by %-18s @ %9.2f  (%.0f%% confidence)\n",
				round.Epoch, round.Winner.Action, round.Winner.Agent,
				round.Winner.Price, round.Winner.Confidence*100)
		}
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                       FINAL LEADERBOARD")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("Rounds run:     %d\n", rounds)
	fmt.Printf("Decided rounds: %d (%.1f%%)\n", decided, float64(decided)/float64(rounds)*100)
	fmt.Println()

	for i, entry := range battle.Leaderboard() {
		fmt.Printf("Rank #%d: %s\n", i+1, entry.Name)
		fmt.Printf("  PnL:         %.2f\n", entry.TotalPnL)
		fmt.Printf("  Win Rate:    %.1f%%\n", entry.WinRate*100)
		fmt.Printf("  Sharpe:      %.2f\n", entry.Sharpe)
		fmt.Printf("  Trades:      %d\n", entry.Trades)
		fmt.Printf("  Epoch Wins:  %d\n", entry.EpochWins)
		fmt.Println()
	}

	if len(os.Args) > 1 && os.Args[1] == "--json" {
		saveRoundsJSON(battle.History(), "replay_rounds.json")
	}
}

func buildLineup(cfg *store.Config) []interfaces.StrategyAgent {
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

func saveRoundsJSON(rounds []types.BattleRound, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create JSON file: %v\n", err)
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rounds); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write JSON: %v\n", err)
		return
	}

	fmt.Printf("Rounds saved to %s\n", filename)
}
