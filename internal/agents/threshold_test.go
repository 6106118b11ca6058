package agents

import (
	"math"
	"strings"
	"testing"

	"strategy-arena/internal/types"
)

func newsEv(source, title, sentiment string, impact float64) types.NewsEvent {
	return types.NewsEvent{Source: source, Title: title, Sentiment: sentiment, ImpactScore: impact}
}

func forecastSnap(markets ...types.ForecastMarket) *types.EventSnapshot {
	return &types.EventSnapshot{Forecasts: markets}
}

func onchainSnap(st types.OnChainStats) *types.EventSnapshot {
	return &types.EventSnapshot{OnChain: &st}
}

func newsSnap(events ...types.NewsEvent) *types.EventSnapshot {
	return &types.EventSnapshot{News: events}
}

func TestForecastBullishMarketBuys(t *testing.T) {
	a := NewForecastAgent(0.65, 0)
	ev := forecastSnap(types.ForecastMarket{
		Key: "btc-100k", Title: "Will BTC reach $100k by March?", YesProb: 0.68, Source: "polymarket",
	})

	s := a.Evaluate(testSnap(64000), ev)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionBuy {
		t.Errorf("bullish market above threshold should BUY, got %s", s.Action)
	}
	if math.Abs(s.Confidence-0.68) > 1e-9 {
		t.Errorf("confidence should equal the yes probability, got %v", s.Confidence)
	}
	if !strings.Contains(s.Reason, "68% yes probability") {
		t.Errorf("reason should carry the probability, got %q", s.Reason)
	}
}

func TestForecastMacroRiskMarketInverts(t *testing.T) {
	a := NewForecastAgent(0.65, 0)
	ev := forecastSnap(types.ForecastMarket{
		Key: "fed-hike-sept", Title: "Fed rate hike in September?", YesProb: 0.78, Source: "polymarket",
	})

	s := a.Evaluate(testSnap(64000), ev)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionSell {
		t.Errorf("likely rate hike should SELL, got %s", s.Action)
	}
}

func TestForecastUnlikelyBullishMarketSells(t *testing.T) {
	a := NewForecastAgent(0.65, 0)
	ev := forecastSnap(types.ForecastMarket{
		Key: "btc-100k", Title: "Will BTC reach $100k by March?", YesProb: 0.25, Source: "polymarket",
	})

	s := a.Evaluate(testSnap(64000), ev)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionSell {
		t.Errorf("improbable price target should SELL, got %s", s.Action)
	}
	if math.Abs(s.Confidence-0.75) > 1e-9 {
		t.Errorf("confidence should be the no probability, got %v", s.Confidence)
	}
}

func TestForecastInsideBandStaysSilent(t *testing.T) {
	a := NewForecastAgent(0.65, 0)
	ev := forecastSnap(types.ForecastMarket{
		Key: "btc-100k", Title: "Will BTC reach $100k by March?", YesProb: 0.5, Source: "polymarket",
	})
	if s := a.Evaluate(testSnap(64000), ev); s != nil {
		t.Errorf("coin-flip probability must not signal, got %s", s.Action)
	}
}

func TestForecastIgnoresUnrelatedMarkets(t *testing.T) {
	a := NewForecastAgent(0.65, 0)
	ev := forecastSnap(types.ForecastMarket{
		Key: "rain-paris", Title: "Will it rain in Paris tomorrow?", YesProb: 0.95, Source: "polymarket",
	})
	if s := a.Evaluate(testSnap(64000), ev); s != nil {
		t.Errorf("unclassifiable market must not signal, got %q", s.Reason)
	}
}

func TestForecastDedupAcrossRounds(t *testing.T) {
	a := NewForecastAgent(0.65, 0)
	ev := forecastSnap(types.ForecastMarket{
		Key: "btc-100k", Title: "Will BTC reach $100k by March?", YesProb: 0.68, Source: "polymarket",
	})

	if s := a.Evaluate(testSnap(64000), ev); s == nil {
		t.Fatal("first sighting should signal")
	}
	if s := a.Evaluate(testSnap(64100), ev); s != nil {
		t.Error("same market must not signal twice")
	}
}

func TestOnChainInflowBuys(t *testing.T) {
	a := NewOnChainAgent(400_000_000, 0)
	s := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{ExchangeInflowUSD: 450_000_000}))
	if s == nil {
		t.Fatal("inflow above threshold should signal")
	}
	if s.Action != types.ActionBuy {
		t.Errorf("expected BUY, got %s", s.Action)
	}
	want := 0.6 + 0.45*0.05
	if math.Abs(s.Confidence-want) > 1e-9 {
		t.Errorf("confidence: got %v want %v", s.Confidence, want)
	}
	if !strings.Contains(s.Reason, "450M") {
		t.Errorf("reason should carry the flow size, got %q", s.Reason)
	}
}

func TestOnChainInflowOutranksStablecoin(t *testing.T) {
	a := NewOnChainAgent(400_000_000, 0)
	s := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{
		ExchangeInflowUSD:  500_000_000,
		StablecoinDeltaUSD: 600_000_000,
	}))
	if s == nil {
		t.Fatal("expected a signal")
	}
	if !strings.Contains(s.Reason, "exchanges") {
		t.Errorf("inflow check runs first, got reason %q", s.Reason)
	}
}

func TestOnChainStablecoinRedemptionSells(t *testing.T) {
	a := NewOnChainAgent(400_000_000, 0)
	s := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{StablecoinDeltaUSD: -400_000_000}))
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionSell || s.Confidence != 0.73 {
		t.Errorf("redemption should SELL at 0.73, got %s %v", s.Action, s.Confidence)
	}
}

func TestOnChainTVLMoves(t *testing.T) {
	a := NewOnChainAgent(400_000_000, 0)

	up := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{DefiTVLUSD: 106e9, PrevDefiTVLUSD: 100e9}))
	if up == nil || up.Action != types.ActionBuy || up.Confidence != 0.72 {
		t.Errorf("TVL +6%% should BUY at 0.72, got %+v", up)
	}

	down := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{DefiTVLUSD: 94e9, PrevDefiTVLUSD: 100e9}))
	if down == nil || down.Action != types.ActionSell || down.Confidence != 0.75 {
		t.Errorf("TVL -6%% should SELL at 0.75, got %+v", down)
	}
}

func TestOnChainDedupSameReading(t *testing.T) {
	a := NewOnChainAgent(400_000_000, 0)
	snap := onchainSnap(types.OnChainStats{ExchangeInflowUSD: 450_000_000})

	if s := a.Evaluate(testSnap(64000), snap); s == nil {
		t.Fatal("first reading should signal")
	}
	if s := a.Evaluate(testSnap(64100), snap); s != nil {
		t.Error("identical reading must not signal twice")
	}
}

func TestFlowWatcherThreshold(t *testing.T) {
	a := NewFlowWatcherAgent(200_000_000, 0)

	if s := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{StablecoinDeltaUSD: 150_000_000})); s != nil {
		t.Error("delta under threshold must not signal")
	}

	buy := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{StablecoinDeltaUSD: 250_000_000}))
	if buy == nil || buy.Action != types.ActionBuy {
		t.Errorf("expanding float should BUY, got %+v", buy)
	}

	sell := a.Evaluate(testSnap(64000), onchainSnap(types.OnChainStats{StablecoinDeltaUSD: -250_000_000}))
	if sell == nil || sell.Action != types.ActionSell {
		t.Errorf("contracting float should SELL, got %+v", sell)
	}
}

func TestNewsAgentImpactThreshold(t *testing.T) {
	a := NewNewsAgent(2.0, 1.5, 0)

	low := newsSnap(newsEv("coindesk", "Minor exchange lists new token", "bullish", 1.5))
	if s := a.Evaluate(testSnap(64000), low); s != nil {
		t.Error("impact under threshold must not signal")
	}

	hot := newsSnap(newsEv("coindesk", "Major fund announces BTC allocation", "bullish", 2.5))
	s := a.Evaluate(testSnap(64000), hot)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Action != types.ActionBuy {
		t.Errorf("bullish headline should BUY, got %s", s.Action)
	}
	want := 0.6 + 2.5/10
	if math.Abs(s.Confidence-want) > 1e-9 {
		t.Errorf("confidence: got %v want %v", s.Confidence, want)
	}
}

func TestNewsFedMultiplierCrossesThreshold(t *testing.T) {
	a := NewNewsAgent(2.0, 1.5, 0)

	// Raw impact 1.5 misses the 2.0 bar; the Fed multiplier lifts it to 2.25.
	ev := newsSnap(newsEv("reuters", "Powell speaks on inflation outlook", "", 1.5))
	s := a.Evaluate(testSnap(64000), ev)
	if s == nil {
		t.Fatal("fed-weighted impact should clear the threshold")
	}
	if s.Action != types.ActionSell || s.Confidence != 0.65 {
		t.Errorf("neutral Fed copy reads hawkish: want SELL 0.65, got %s %v", s.Action, s.Confidence)
	}
}

func TestNewsConfidenceCapped(t *testing.T) {
	a := NewNewsAgent(2.0, 1.5, 0)
	ev := newsSnap(newsEv("reuters", "Fed announces emergency policy shift", "bullish", 3.5))
	s := a.Evaluate(testSnap(64000), ev)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if s.Confidence != 0.88 {
		t.Errorf("news confidence caps at 0.88, got %v", s.Confidence)
	}
}

func TestNewsPicksHighestWeightedImpact(t *testing.T) {
	a := NewNewsAgent(2.0, 1.5, 0)
	ev := newsSnap(
		newsEv("coindesk", "Exchange expands into Asia", "bullish", 2.5),
		newsEv("reuters", "Nation state announces BTC reserve", "bullish", 4.0),
	)
	s := a.Evaluate(testSnap(64000), ev)
	if s == nil {
		t.Fatal("expected a signal")
	}
	if !strings.Contains(s.Reason, "Nation state") {
		t.Errorf("should act on the biggest story, got %q", s.Reason)
	}
}

func TestNewsDedupOnSourceAndTitle(t *testing.T) {
	a := NewNewsAgent(2.0, 1.5, 0)
	ev := newsSnap(newsEv("coindesk", "Major fund announces BTC allocation", "bullish", 2.5))

	if s := a.Evaluate(testSnap(64000), ev); s == nil {
		t.Fatal("first sighting should signal")
	}
	if s := a.Evaluate(testSnap(64100), ev); s != nil {
		t.Error("same story must not signal twice")
	}

	// Same title from another outlet is a different event.
	other := newsSnap(newsEv("theblock", "Major fund announces BTC allocation", "bullish", 2.5))
	if s := a.Evaluate(testSnap(64200), other); s == nil {
		t.Error("different source should be treated as a fresh event")
	}
}

func TestNewsUnclassifiableEventNotConsumed(t *testing.T) {
	a := NewNewsAgent(2.0, 1.5, 0)

	// No sentiment, not Fed, not ETF: skipped without being marked seen.
	vague := newsSnap(newsEv("coindesk", "Conference season kicks off in Lisbon", "", 3.0))
	if s := a.Evaluate(testSnap(64000), vague); s != nil {
		t.Fatalf("undirectional story must not signal, got %q", s.Reason)
	}

	// The same story later tagged with sentiment still fires.
	tagged := newsSnap(newsEv("coindesk", "Conference season kicks off in Lisbon", "bullish", 3.0))
	if s := a.Evaluate(testSnap(64100), tagged); s == nil {
		t.Error("story skipped without a direction should stay eligible")
	}
}

func TestFedDeskDirections(t *testing.T) {
	cases := []struct {
		title  string
		action types.Action
		conf   float64
	}{
		{"Fed signals another rate hike", types.ActionSell, 0.82},
		{"Fed hints at rate cut next quarter", types.ActionBuy, 0.82},
		{"Fed holds rates steady", types.ActionBuy, 0.72},
	}
	for _, tc := range cases {
		a := NewFedNewsAgent(0)
		s := a.Evaluate(testSnap(64000), newsSnap(newsEv("reuters", tc.title, "", 2.0)))
		if s == nil {
			t.Errorf("%q: expected a signal", tc.title)
			continue
		}
		if s.Action != tc.action || s.Confidence != tc.conf {
			t.Errorf("%q: got %s %v, want %s %v", tc.title, s.Action, s.Confidence, tc.action, tc.conf)
		}
	}
}

func TestFedDeskIgnoresOtherNews(t *testing.T) {
	a := NewFedNewsAgent(0)
	ev := newsSnap(newsEv("bloomberg", "Tech earnings beat expectations", "bullish", 3.0))
	if s := a.Evaluate(testSnap(64000), ev); s != nil {
		t.Errorf("non-Fed story must be ignored, got %q", s.Reason)
	}
}

func TestSECDeskDirections(t *testing.T) {
	cases := []struct {
		title  string
		action types.Action
		conf   float64
	}{
		{"SEC approves spot Bitcoin ETF", types.ActionBuy, 0.92},
		{"SEC rejects latest ETF application", types.ActionSell, 0.85},
		{"SEC sues major exchange over listings", types.ActionSell, 0.73},
	}
	for _, tc := range cases {
		a := NewSECNewsAgent(0)
		s := a.Evaluate(testSnap(64000), newsSnap(newsEv("reuters", tc.title, "", 2.0)))
		if s == nil {
			t.Errorf("%q: expected a signal", tc.title)
			continue
		}
		if s.Action != tc.action || s.Confidence != tc.conf {
			t.Errorf("%q: got %s %v, want %s %v", tc.title, s.Action, s.Confidence, tc.action, tc.conf)
		}
	}
}

func TestSeenSetEvictsOldest(t *testing.T) {
	s := newSeenSet(2)
	s.Add("a")
	s.Add("b")
	s.Add("c")

	if s.Has("a") {
		t.Error("oldest key should have been evicted")
	}
	if !s.Has("b") || !s.Has("c") {
		t.Error("recent keys should survive eviction")
	}
}

func TestEventKeyTruncatesTitle(t *testing.T) {
	long := strings.Repeat("x", 60)
	k1 := eventKey("src", long)
	k2 := eventKey("src", long[:50])
	if k1 != k2 {
		t.Error("titles should be compared on their first 50 characters")
	}
}
