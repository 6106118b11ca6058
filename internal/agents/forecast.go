package agents

import (
	"fmt"
	"math"
	"strings"

	"strategy-arena/internal/types"
)

var (
	bearishMarketKeywords = []string{"fed hike", "rate hike", "recession", "crash", "default"}
	bullishMarketKeywords = []string{"btc", "bitcoin", "eth", "100k", "all-time high"}
)

// ForecastAgent reads prediction-market probabilities. A market whose yes
// probability clears the threshold maps to a direction: price-target
// markets read bullish, macro-risk markets (rate hikes, recession) read
// inverted.
type ForecastAgent struct {
	name      string
	threshold float64
	seen      *seenSet
}

func NewForecastAgent(threshold float64, dedupLimit int) *ForecastAgent {
	if threshold <= 0.5 || threshold >= 1 {
		threshold = 0.65
	}
	return &ForecastAgent{name: "forecast-market", threshold: threshold, seen: newSeenSet(dedupLimit)}
}

func (a *ForecastAgent) Name() string { return a.name }

func (a *ForecastAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil || len(events.Forecasts) == 0 {
		return nil
	}

	for _, fm := range events.Forecasts {
		key := eventKey(fm.Source, fm.Key)
		if a.seen.Has(key) {
			continue
		}

		action, ok := forecastDirection(fm, a.threshold)
		if !ok {
			continue
		}
		a.seen.Add(key)

		conf := math.Min(0.90, math.Max(fm.YesProb, 1-fm.YesProb))
		return &types.Signal{
			Ts:         signalTime(market),
			Symbol:     market.Symbol,
			Action:     action,
			Confidence: conf,
			Size:       100 * conf,
			Reason:     fmt.Sprintf("%s at %.0f%% yes probability", fm.Title, fm.YesProb*100),
			Agent:      a.name,
			Price:      market.Price,
		}
	}
	return nil
}

// forecastDirection maps one prediction market to a trade direction, or
// reports no opinion when the probability sits inside the threshold band.
func forecastDirection(fm types.ForecastMarket, threshold float64) (types.Action, bool) {
	text := strings.ToLower(fm.Key + " " + fm.Title)
	bearishMarket := containsAny(text, bearishMarketKeywords)
	if !bearishMarket && !containsAny(text, bullishMarketKeywords) {
		return "", false
	}

	switch {
	case fm.YesProb > threshold:
		if bearishMarket {
			return types.ActionSell, true
		}
		return types.ActionBuy, true
	case fm.YesProb < 1-threshold:
		if bearishMarket {
			return types.ActionBuy, true
		}
		return types.ActionSell, true
	}
	return "", false
}
