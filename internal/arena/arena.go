package arena

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"strategy-arena/internal/explain"
	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/metrics"
	"strategy-arena/internal/perf"
	"strategy-arena/internal/roundlog"
	"strategy-arena/internal/store"
	"strategy-arena/internal/types"
)

// Manager runs battle rounds: every agent evaluates the same snapshot,
// the selector picks at most one winner, and only the winner's record
// is updated. Rounds are strictly sequential.
type Manager struct {
	mu           sync.Mutex
	agents       []interfaces.StrategyAgent
	selector     *Selector
	tracker      *perf.Tracker
	explainer    *explain.Provider
	audit        *roundlog.Logger
	mtr          *metrics.Metrics
	epoch        int64
	history      []types.BattleRound
	historyLimit int
}

var _ interfaces.Arena = (*Manager)(nil)

func New(cfg *store.Config, agents []interfaces.StrategyAgent, explainer *explain.Provider, audit *roundlog.Logger, mtr *metrics.Metrics) interfaces.Arena {
	opts := []SelectorOption{
		WithEpsilon(cfg.Arena.Epsilon),
		WithWeights(cfg.Arena.WeightConfidence, cfg.Arena.WeightWinRate, cfg.Arena.WeightEpochWins),
	}
	if cfg.Arena.Seed != 0 {
		opts = append(opts, WithRand(rand.New(rand.NewSource(cfg.Arena.Seed))))
	}
	if explainer == nil {
		explainer = explain.NewProvider(nil, mtr)
	}
	tracker := perf.NewTracker(cfg.Arena.HistoryLimit)
	for _, ag := range agents {
		tracker.Register(ag.Name())
	}
	return &Manager{
		agents:       agents,
		selector:     NewSelector(opts...),
		tracker:      tracker,
		explainer:    explainer,
		audit:        audit,
		mtr:          mtr,
		historyLimit: cfg.Arena.HistoryLimit,
	}
}

func (m *Manager) RunRound(ctx context.Context, market types.MarketSnapshot, events *types.EventSnapshot) (*types.BattleRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	m.epoch++
	epoch := m.epoch
	logger.Debug(ctx, "Starting battle round", "epoch", epoch, "symbol", market.Symbol, "price", market.Price)

	// Evaluate agents in parallel; the results slice keeps agent order.
	results := make([]*types.Signal, len(m.agents))
	var wg sync.WaitGroup
	for i, ag := range m.agents {
		wg.Add(1)
		go func(i int, ag interfaces.StrategyAgent) {
			defer wg.Done()
			results[i] = ag.Evaluate(market, events)
		}(i, ag)
	}
	wg.Wait()

	// HOLD never competes for selection.
	candidates := make([]types.Signal, 0, len(results))
	for _, s := range results {
		if s == nil || s.Action == types.ActionHold {
			continue
		}
		candidates = append(candidates, *s)
		logger.Signal(ctx, s.Agent, s.Symbol, string(s.Action), s.Confidence, s.Reason, "epoch", epoch)
		m.mtr.SignalEmitted(s.Agent, string(s.Action))
	}
	logger.Debug(ctx, "Agent evaluations collected", "epoch", epoch, "agents", len(m.agents), "candidates", len(candidates))

	round := types.BattleRound{Epoch: epoch, Candidates: candidates, Ts: time.Now()}

	if winner, ok := m.selector.Select(candidates, m.tracker, epoch); ok {
		m.tracker.RecordWin(winner.Agent)
		summary, _ := m.tracker.Summary(winner.Agent)
		round.Winner = &winner
		round.Explanation = m.explainer.Explain(ctx, winner, candidates, market, summary)
		logger.Round(ctx, epoch, len(candidates), winner.Agent, winner.Confidence, "action", winner.Action, "symbol", winner.Symbol)
		m.mtr.WinRecorded(winner.Agent)
	} else {
		round.Explanation = "no actionable signals this round"
		logger.Round(ctx, epoch, len(candidates), "", 0)
	}

	round.Leaderboard = m.tracker.Leaderboard()

	m.history = append(m.history, round)
	if m.historyLimit > 0 && len(m.history) > m.historyLimit {
		m.history = m.history[len(m.history)-m.historyLimit:]
	}
	_ = m.audit.Append(round)
	m.mtr.RoundCompleted(round.Winner != nil, time.Since(start).Seconds())
	return &round, nil
}

func (m *Manager) RecordOutcome(ctx context.Context, out types.TradeOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.tracker.RecordOutcome(out); err != nil {
		logger.ErrorWithErr(ctx, "Outcome rejected", err, "agent", out.Signal.Agent)
		return err
	}
	logger.Outcome(ctx, out.Signal.Agent, out.PnL, out.ExecPrice, out.Slippage)
	if summary, ok := m.tracker.Summary(out.Signal.Agent); ok {
		m.mtr.OutcomeRecorded(out.Signal.Agent, summary.TotalPnL)
	}
	return nil
}

func (m *Manager) Leaderboard() []types.AgentSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Leaderboard()
}

func (m *Manager) History() []types.BattleRound {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.BattleRound, len(m.history))
	copy(out, m.history)
	return out
}
