// Package perf keeps per-agent outcome history and the derived statistics
// that feed selection: win rate, a Sharpe-like risk ratio and cumulative
// pnl. Derived values are recomputed from history on every read so they
// can never drift from it.
package perf

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"strategy-arena/internal/ta"
	"strategy-arena/internal/types"
)

const (
	sharpeEpsilon     = 1e-6
	annualizationDays = 252
)

type agentRecord struct {
	name      string
	outcomes  []types.TradeOutcome
	epochWins int
}

// Tracker is safe for concurrent use: rounds read stats while the outcome
// feedback channel appends.
type Tracker struct {
	mu     sync.RWMutex
	limit  int
	agents map[string]*agentRecord
	order  []string
}

// NewTracker builds a tracker. historyLimit bounds each agent's retained
// outcome history; 0 keeps everything.
func NewTracker(historyLimit int) *Tracker {
	return &Tracker{
		limit:  historyLimit,
		agents: make(map[string]*agentRecord),
	}
}

// Register ensures an agent has a performance row. Registration order is
// kept for stable leaderboard ordering among agents with equal pnl.
func (t *Tracker) Register(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure(name)
}

func (t *Tracker) ensure(name string) *agentRecord {
	if rec, ok := t.agents[name]; ok {
		return rec
	}
	rec := &agentRecord{name: name}
	t.agents[name] = rec
	t.order = append(t.order, name)
	return rec
}

// RecordOutcome appends a realized outcome to the owning agent's history.
// The agent must have been registered; outcomes for unknown agents are an
// error, not a silent registration.
func (t *Tracker) RecordOutcome(out types.TradeOutcome) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.agents[out.Signal.Agent]
	if !ok {
		return fmt.Errorf("unknown agent %q", out.Signal.Agent)
	}
	rec.outcomes = append(rec.outcomes, out)
	if t.limit > 0 && len(rec.outcomes) > t.limit {
		rec.outcomes = rec.outcomes[len(rec.outcomes)-t.limit:]
	}
	return nil
}

// RecordWin bumps the agent's epoch-win counter.
func (t *Tracker) RecordWin(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure(name).epochWins++
}

func (t *Tracker) WinRate(name string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.agents[name]
	if !ok {
		return 0
	}
	return winRate(rec.outcomes)
}

func (t *Tracker) EpochWins(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.agents[name]
	if !ok {
		return 0
	}
	return rec.epochWins
}

// Summary returns the agent's current derived stats.
func (t *Tracker) Summary(name string) (types.AgentSummary, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.agents[name]
	if !ok {
		return types.AgentSummary{}, false
	}
	return summarize(rec), true
}

// Leaderboard returns every agent's summary sorted by cumulative pnl
// descending; equal pnl keeps registration order.
func (t *Tracker) Leaderboard() []types.AgentSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]types.AgentSummary, 0, len(t.order))
	for _, name := range t.order {
		rows = append(rows, summarize(t.agents[name]))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalPnL > rows[j].TotalPnL
	})
	return rows
}

func summarize(rec *agentRecord) types.AgentSummary {
	pnls := make([]float64, len(rec.outcomes))
	for i, o := range rec.outcomes {
		pnls[i] = o.PnL
	}
	return types.AgentSummary{
		Name:      rec.name,
		WinRate:   winRate(rec.outcomes),
		Sharpe:    sharpeRatio(pnls),
		TotalPnL:  cumulativePnL(pnls),
		Trades:    len(rec.outcomes),
		EpochWins: rec.epochWins,
	}
}

func winRate(outcomes []types.TradeOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	wins := 0
	for _, o := range outcomes {
		if o.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(outcomes))
}

// sharpeRatio is mean pnl over its standard deviation, annualized. Below
// two samples there is no deviation to speak of, so the ratio is 0.
func sharpeRatio(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0
	}
	mean := ta.SMA(pnls, len(pnls))
	std := ta.StdDev(pnls, len(pnls))
	return mean / (std + sharpeEpsilon) * math.Sqrt(annualizationDays)
}

func cumulativePnL(pnls []float64) float64 {
	sum := 0.0
	for _, p := range pnls {
		sum += p
	}
	return sum
}
