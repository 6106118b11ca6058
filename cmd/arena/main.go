package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/metrics"
	"strategy-arena/internal/roundlog"
	"strategy-arena/internal/trace"
	"strategy-arena/internal/types"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	audit := roundlog.New(cfg.RoundLog.Dir)
	compressOldRounds(ctx, cfg, audit)

	mtr := metrics.New()
	if cfg.Metrics.Enabled {
		mtr.Serve(cfg.Metrics.Addr)
		logger.Info(ctx, "Metrics endpoint listening", "addr", cfg.Metrics.Addr)
	}

	marketFeed := initializeMarketFeed(ctx, cfg)
	if err := marketFeed.Start(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Market feed failed to start", err)
		os.Exit(1)
	}
	defer marketFeed.Close()

	eventSource := initializeEventSource(ctx, cfg)
	explainer := initializeExplainer(ctx, cfg, mtr)
	battle := initializeArena(cfg, buildAgents(cfg), explainer, audit, mtr)
	reporter := initializeReporter(audit)
	book := newPaperBook()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.RoundSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Arena started",
		"mode", cfg.Mode,
		"symbols", cfg.Symbols,
		"round_seconds", cfg.RoundSeconds,
	)

	for {
		select {
		case <-tick.C:
			for _, sym := range cfg.Symbols {
				market, err := marketFeed.Snapshot(ctx, sym)
				if err != nil {
					logger.Warn(ctx, "No market snapshot, skipping round",
						"symbol", sym,
						"error", err.Error(),
					)
					continue
				}

				// Settle last round's winner at the current price
				// before the next battle starts.
				book.settle(ctx, battle, sym, market.Price)

				round, err := battle.RunRound(ctx, market, eventSource.Snapshot(ctx, sym))
				if err != nil {
					logger.ErrorWithErr(ctx, "Round failed", err, "symbol", sym)
					continue
				}
				book.track(sym, round)

				if round.Winner != nil {
					b, _ := json.Marshal(round.Winner)
					fmt.Println(string(b))
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			shutdown(ctx, reporter)
			return
		case <-ctx.Done():
			shutdown(ctx, reporter)
			return
		}
	}
}

func shutdown(ctx context.Context, reporter interfaces.Reporter) {
	if p, err := reporter.SummarizeToday(); err == nil && p != "" {
		logger.Info(ctx, "Daily report written", "csv_path", p)
	}

	shctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(shctx)
	_ = logger.Shutdown(shctx)
}

// paperBook holds each symbol's open winning signal until the next tick,
// when it is marked to market and fed back as an outcome. Order routing
// stays out of scope; this keeps the track records moving.
type paperBook struct {
	open map[string]types.Signal
}

func newPaperBook() *paperBook {
	return &paperBook{open: make(map[string]types.Signal)}
}

func (b *paperBook) track(sym string, round *types.BattleRound) {
	if round != nil && round.Winner != nil {
		b.open[sym] = *round.Winner
	}
}

func (b *paperBook) settle(ctx context.Context, battle interfaces.Arena, sym string, price float64) {
	win, ok := b.open[sym]
	if !ok {
		return
	}
	delete(b.open, sym)

	if win.Price <= 0 || price <= 0 {
		return
	}

	dir := 1.0
	if win.Action == types.ActionSell {
		dir = -1
	}
	size := win.Size
	if size == 0 {
		size = 1
	}

	out := types.TradeOutcome{
		Signal:    win,
		PnL:       (price - win.Price) * dir * size,
		ExecPrice: price,
		Ts:        time.Now(),
	}
	if err := battle.RecordOutcome(ctx, out); err != nil {
		logger.Warn(ctx, "Failed to record outcome",
			"agent", win.Agent,
			"error", err.Error(),
		)
	}
}
