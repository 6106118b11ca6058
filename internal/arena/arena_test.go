package arena

import (
	"context"
	"testing"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/store"
	"strategy-arena/internal/types"
)

type stubAgent struct {
	name string
	sig  *types.Signal
}

func (a stubAgent) Name() string { return a.name }

func (a stubAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if a.sig == nil {
		return nil
	}
	s := *a.sig
	s.Agent = a.name
	s.Symbol = market.Symbol
	return &s
}

func testConfig() *store.Config {
	cfg := store.DefaultConfig()
	cfg.Arena.Epsilon = 0
	cfg.Arena.Seed = 1
	return cfg
}

func testMarket() types.MarketSnapshot {
	return types.MarketSnapshot{Symbol: "BTCUSDT", Price: 64000, Ts: time.Now()}
}

func buySig(conf float64) *types.Signal {
	return &types.Signal{Action: types.ActionBuy, Confidence: conf, Size: 100, Reason: "test signal"}
}

func TestEpochIncrementsPerRound(t *testing.T) {
	a := New(testConfig(), []interfaces.StrategyAgent{stubAgent{name: "one", sig: buySig(0.8)}}, nil, nil, nil)

	for want := int64(1); want <= 3; want++ {
		round, err := a.RunRound(context.Background(), testMarket(), nil)
		if err != nil {
			t.Fatalf("round %d: %v", want, err)
		}
		if round.Epoch != want {
			t.Errorf("expected epoch %d, got %d", want, round.Epoch)
		}
	}
}

func TestEmptyRoundIsValid(t *testing.T) {
	agents := []interfaces.StrategyAgent{
		stubAgent{name: "quiet-one"},
		stubAgent{name: "quiet-two"},
	}
	a := New(testConfig(), agents, nil, nil, nil)

	round, err := a.RunRound(context.Background(), testMarket(), nil)
	if err != nil {
		t.Fatalf("a round without candidates must not error: %v", err)
	}
	if round.Winner != nil {
		t.Errorf("expected no winner, got %s", round.Winner.Agent)
	}
	if len(round.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(round.Candidates))
	}
	if round.Explanation == "" {
		t.Error("no-winner round still carries an explanation")
	}
	if len(round.Leaderboard) != 2 {
		t.Errorf("registered agents must appear on the leaderboard, got %d entries", len(round.Leaderboard))
	}
}

func TestHoldNeverCompetes(t *testing.T) {
	agents := []interfaces.StrategyAgent{
		stubAgent{name: "holder", sig: &types.Signal{Action: types.ActionHold, Confidence: 0.99}},
		stubAgent{name: "buyer", sig: buySig(0.5)},
	}
	a := New(testConfig(), agents, nil, nil, nil)

	round, err := a.RunRound(context.Background(), testMarket(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(round.Candidates) != 1 || round.Candidates[0].Agent != "buyer" {
		t.Fatalf("HOLD must be filtered from candidates, got %+v", round.Candidates)
	}
	if round.Winner == nil || round.Winner.Agent != "buyer" {
		t.Error("remaining candidate should win")
	}
}

func TestCandidateOrderMatchesAgentOrder(t *testing.T) {
	agents := []interfaces.StrategyAgent{
		stubAgent{name: "alpha", sig: buySig(0.5)},
		stubAgent{name: "bravo", sig: buySig(0.6)},
		stubAgent{name: "charlie", sig: buySig(0.7)},
	}
	a := New(testConfig(), agents, nil, nil, nil)

	for i := 0; i < 10; i++ {
		round, err := a.RunRound(context.Background(), testMarket(), nil)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"alpha", "bravo", "charlie"}
		for j, c := range round.Candidates {
			if c.Agent != want[j] {
				t.Fatalf("round %d: candidate order broken at %d: got %s want %s", i, j, c.Agent, want[j])
			}
		}
	}
}

func TestWinnerOnlyStateUpdates(t *testing.T) {
	agents := []interfaces.StrategyAgent{
		stubAgent{name: "strong", sig: buySig(0.9)},
		stubAgent{name: "weak", sig: buySig(0.4)},
	}
	a := New(testConfig(), agents, nil, nil, nil)

	round, err := a.RunRound(context.Background(), testMarket(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if round.Winner == nil || round.Winner.Agent != "strong" {
		t.Fatalf("expected strong to win, got %+v", round.Winner)
	}

	wins := map[string]int{}
	for _, s := range round.Leaderboard {
		wins[s.Name] = s.EpochWins
	}
	if wins["strong"] != 1 {
		t.Errorf("winner's epoch wins should be 1, got %d", wins["strong"])
	}
	if wins["weak"] != 0 {
		t.Errorf("loser's epoch wins should stay 0, got %d", wins["weak"])
	}
}

func TestRecordOutcomeUnknownAgent(t *testing.T) {
	a := New(testConfig(), []interfaces.StrategyAgent{stubAgent{name: "known", sig: buySig(0.8)}}, nil, nil, nil)

	out := types.TradeOutcome{Signal: types.Signal{Agent: "stranger"}, PnL: 10}
	if err := a.RecordOutcome(context.Background(), out); err == nil {
		t.Fatal("outcome for an unregistered agent must be rejected")
	}
}

func TestLeaderboardOrdersByPnL(t *testing.T) {
	agents := []interfaces.StrategyAgent{
		stubAgent{name: "minor", sig: buySig(0.8)},
		stubAgent{name: "major", sig: buySig(0.6)},
	}
	a := New(testConfig(), agents, nil, nil, nil)

	if err := a.RecordOutcome(context.Background(), types.TradeOutcome{Signal: types.Signal{Agent: "minor"}, PnL: 5}); err != nil {
		t.Fatal(err)
	}
	if err := a.RecordOutcome(context.Background(), types.TradeOutcome{Signal: types.Signal{Agent: "major"}, PnL: 50}); err != nil {
		t.Fatal(err)
	}

	lb := a.Leaderboard()
	if len(lb) != 2 {
		t.Fatalf("expected 2 leaderboard entries, got %d", len(lb))
	}
	if lb[0].Name != "major" || lb[1].Name != "minor" {
		t.Errorf("leaderboard not sorted by pnl: %s before %s", lb[0].Name, lb[1].Name)
	}
}

func TestHistoryRetention(t *testing.T) {
	cfg := testConfig()
	cfg.Arena.HistoryLimit = 2
	a := New(cfg, []interfaces.StrategyAgent{stubAgent{name: "one", sig: buySig(0.8)}}, nil, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := a.RunRound(context.Background(), testMarket(), nil); err != nil {
			t.Fatal(err)
		}
	}

	hist := a.History()
	if len(hist) != 2 {
		t.Fatalf("expected history trimmed to 2, got %d", len(hist))
	}
	if hist[0].Epoch != 2 || hist[1].Epoch != 3 {
		t.Errorf("oldest rounds should be dropped first, got epochs %d, %d", hist[0].Epoch, hist[1].Epoch)
	}
}

func TestCancelledContextStopsRound(t *testing.T) {
	a := New(testConfig(), []interfaces.StrategyAgent{stubAgent{name: "one", sig: buySig(0.8)}}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.RunRound(ctx, testMarket(), nil); err == nil {
		t.Fatal("cancelled context must abort the round")
	}
}
