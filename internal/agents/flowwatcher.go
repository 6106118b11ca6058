package agents

import (
	"fmt"
	"math"

	"strategy-arena/internal/types"
)

// FlowWatcherAgent watches a single metric: the 24h stablecoin supply
// delta. Fresh stablecoin supply is dry powder entering the market,
// redemptions are capital leaving it.
type FlowWatcherAgent struct {
	name      string
	threshold float64
	seen      *seenSet
}

func NewFlowWatcherAgent(thresholdUSD float64, dedupLimit int) *FlowWatcherAgent {
	if thresholdUSD <= 0 {
		thresholdUSD = 200_000_000
	}
	return &FlowWatcherAgent{name: "flow-watcher", threshold: thresholdUSD, seen: newSeenSet(dedupLimit)}
}

func (a *FlowWatcherAgent) Name() string { return a.name }

func (a *FlowWatcherAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil || events.OnChain == nil {
		return nil
	}

	delta := events.OnChain.StablecoinDeltaUSD
	if math.Abs(delta) < a.threshold {
		return nil
	}

	key := fmt.Sprintf("flow:%dM", int(delta/1e6))
	if a.seen.Has(key) {
		return nil
	}
	a.seen.Add(key)

	action := types.ActionBuy
	reason := fmt.Sprintf("stablecoin float expanded $%.0fM", delta/1e6)
	if delta < 0 {
		action = types.ActionSell
		reason = fmt.Sprintf("stablecoin float contracted $%.0fM", -delta/1e6)
	}

	conf := math.Min(0.85, 0.65+math.Abs(delta)/1e9*0.05)
	return &types.Signal{
		Ts:         signalTime(market),
		Symbol:     market.Symbol,
		Action:     action,
		Confidence: conf,
		Size:       100 * conf,
		Reason:     reason,
		Agent:      a.name,
		Price:      market.Price,
	}
}
