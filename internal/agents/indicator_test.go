package agents

import (
	"testing"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/types"
)

func testSnap(price float64) types.MarketSnapshot {
	return types.MarketSnapshot{Symbol: "BTCUSDT", Price: price, Ts: time.Unix(1700000000, 0)}
}

func feedPrices(t *testing.T, a interfaces.StrategyAgent, prices []float64) *types.Signal {
	t.Helper()
	var last *types.Signal
	for _, p := range prices {
		last = a.Evaluate(testSnap(p), nil)
	}
	return last
}

func TestTrendAgentHoldsUntilWindowFull(t *testing.T) {
	a := NewTrendAgent(10, 30)
	for i := 1; i <= 29; i++ {
		if s := a.Evaluate(testSnap(float64(i)), nil); s != nil {
			t.Fatalf("no signal expected before %d prices, got one at %d", 30, i)
		}
	}
	if s := a.Evaluate(testSnap(30), nil); s == nil {
		t.Fatal("expected a signal once the slow window filled")
	}
}

func TestTrendAgentBuysUptrend(t *testing.T) {
	a := NewTrendAgent(10, 30)
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = float64(i + 1)
	}

	s := feedPrices(t, a, prices)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionBuy {
		t.Errorf("uptrend should read BUY, got %s", s.Action)
	}
	if s.Confidence != 0.95 {
		t.Errorf("steep trend confidence should cap at 0.95, got %v", s.Confidence)
	}
	if s.Agent != "trend-follower" {
		t.Errorf("unexpected agent name %s", s.Agent)
	}
}

func TestTrendAgentSellsDowntrend(t *testing.T) {
	a := NewTrendAgent(10, 30)
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = float64(100 - i)
	}

	s := feedPrices(t, a, prices)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionSell {
		t.Errorf("downtrend should read SELL, got %s", s.Action)
	}
	if s.Confidence <= 0.5 || s.Confidence > 0.95 {
		t.Errorf("confidence out of range: %v", s.Confidence)
	}
}

func TestTrendAgentRejectsBadPrice(t *testing.T) {
	a := NewTrendAgent(10, 30)
	if s := a.Evaluate(testSnap(0), nil); s != nil {
		t.Error("zero price must be ignored")
	}
	if s := a.Evaluate(testSnap(-5), nil); s != nil {
		t.Error("negative price must be ignored")
	}
}

func TestMeanReversionQuietMarketStaysSilent(t *testing.T) {
	a := NewMeanReversionAgent(20, 2.0)
	for i := 0; i < 25; i++ {
		if s := a.Evaluate(testSnap(100), nil); s != nil {
			t.Fatalf("flat series inside the bands must not signal, got %s", s.Action)
		}
	}
}

func TestMeanReversionBuysCrash(t *testing.T) {
	a := NewMeanReversionAgent(20, 2.0)
	prices := make([]float64, 19)
	for i := range prices {
		prices[i] = 100
	}
	feedPrices(t, a, prices)

	s := a.Evaluate(testSnap(90), nil)
	if s == nil {
		t.Fatal("price far below the lower band should signal")
	}
	if s.Action != types.ActionBuy {
		t.Errorf("expected BUY on a crash, got %s", s.Action)
	}
	if s.Confidence <= 0.6 || s.Confidence > 0.95 {
		t.Errorf("confidence out of range: %v", s.Confidence)
	}
}

func TestMeanReversionSellsSpike(t *testing.T) {
	a := NewMeanReversionAgent(20, 2.0)
	prices := make([]float64, 19)
	for i := range prices {
		prices[i] = 100
	}
	feedPrices(t, a, prices)

	s := a.Evaluate(testSnap(110), nil)
	if s == nil {
		t.Fatal("price far above the upper band should signal")
	}
	if s.Action != types.ActionSell {
		t.Errorf("expected SELL on a spike, got %s", s.Action)
	}
}
