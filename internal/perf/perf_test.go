package perf

import (
	"math"
	"testing"

	"strategy-arena/internal/types"
)

func outcome(agent string, pnl float64) types.TradeOutcome {
	return types.TradeOutcome{Signal: types.Signal{Agent: agent}, PnL: pnl}
}

func TestWinRate(t *testing.T) {
	tr := NewTracker(0)
	tr.Register("a")
	for _, pnl := range []float64{10, -5, 20, -1} {
		if err := tr.RecordOutcome(outcome("a", pnl)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if got := tr.WinRate("a"); got != 0.5 {
		t.Errorf("win rate = %v, want 0.5", got)
	}
}

func TestUnknownAgentOutcome(t *testing.T) {
	tr := NewTracker(0)
	if err := tr.RecordOutcome(outcome("ghost", 1)); err == nil {
		t.Fatal("expected error for unknown agent")
	}
}

func TestSharpeNeedsTwoSamples(t *testing.T) {
	tr := NewTracker(0)
	tr.Register("a")
	tr.RecordOutcome(outcome("a", 42))
	s, _ := tr.Summary("a")
	if s.Sharpe != 0 {
		t.Errorf("sharpe with one sample = %v, want 0", s.Sharpe)
	}
}

func TestSharpeComputation(t *testing.T) {
	tr := NewTracker(0)
	tr.Register("a")
	pnls := []float64{10, 20, 30, 40}
	for _, p := range pnls {
		tr.RecordOutcome(outcome("a", p))
	}
	s, _ := tr.Summary("a")

	mean := 25.0
	std := math.Sqrt((225.0 + 25.0 + 25.0 + 225.0) / 4.0)
	want := mean / (std + 1e-6) * math.Sqrt(252)
	if math.Abs(s.Sharpe-want) > 1e-6 {
		t.Errorf("sharpe = %v, want %v", s.Sharpe, want)
	}
	if s.TotalPnL != 100 {
		t.Errorf("total pnl = %v, want 100", s.TotalPnL)
	}
}

func TestHistoryLimit(t *testing.T) {
	tr := NewTracker(2)
	tr.Register("a")
	for _, p := range []float64{-10, -10, 5, 5} {
		tr.RecordOutcome(outcome("a", p))
	}
	s, _ := tr.Summary("a")
	if s.Trades != 2 {
		t.Errorf("retained trades = %d, want 2", s.Trades)
	}
	if s.WinRate != 1.0 {
		t.Errorf("win rate over retained window = %v, want 1.0", s.WinRate)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	tr := NewTracker(0)
	tr.Register("first")
	tr.Register("second")
	tr.Register("third")
	tr.RecordOutcome(outcome("second", 50))
	tr.RecordOutcome(outcome("third", -10))

	rows := tr.Leaderboard()
	if len(rows) != 3 {
		t.Fatalf("leaderboard rows = %d, want 3", len(rows))
	}
	if rows[0].Name != "second" || rows[2].Name != "third" {
		t.Errorf("leaderboard order = %s,%s,%s", rows[0].Name, rows[1].Name, rows[2].Name)
	}
}

func TestEpochWins(t *testing.T) {
	tr := NewTracker(0)
	tr.Register("a")
	tr.RecordWin("a")
	tr.RecordWin("a")
	if got := tr.EpochWins("a"); got != 2 {
		t.Errorf("epoch wins = %d, want 2", got)
	}
}
