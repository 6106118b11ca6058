package agents

import (
	"fmt"
	"math"

	"strategy-arena/internal/types"
)

// OnChainAgent reads aggregate capital-flow metrics: exchange inflows,
// stablecoin supply changes and DeFi TVL moves, in that priority order.
type OnChainAgent struct {
	name         string
	inflowUSD    float64
	stableInUSD  float64
	stableOutUSD float64
	tvlMove      float64
	seen         *seenSet
}

func NewOnChainAgent(inflowThresholdUSD float64, dedupLimit int) *OnChainAgent {
	if inflowThresholdUSD <= 0 {
		inflowThresholdUSD = 400_000_000
	}
	return &OnChainAgent{
		name:         "onchain-whale",
		inflowUSD:    inflowThresholdUSD,
		stableInUSD:  500_000_000,
		stableOutUSD: -300_000_000,
		tvlMove:      0.05,
		seen:         newSeenSet(dedupLimit),
	}
}

func (a *OnChainAgent) Name() string { return a.name }

func (a *OnChainAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil || events.OnChain == nil {
		return nil
	}
	st := events.OnChain

	// Exchange inflow spike.
	if st.ExchangeInflowUSD > a.inflowUSD {
		key := fmt.Sprintf("inflow:%dM", int(st.ExchangeInflowUSD/1e6))
		if !a.seen.Has(key) {
			a.seen.Add(key)
			conf := math.Min(0.85, 0.6+st.ExchangeInflowUSD/1e9*0.05)
			return a.signal(market, types.ActionBuy, conf,
				fmt.Sprintf("$%.0fM flowed into exchanges", st.ExchangeInflowUSD/1e6))
		}
	}

	// Stablecoin supply change.
	if st.StablecoinDeltaUSD > a.stableInUSD {
		key := fmt.Sprintf("stable:%dM", int(st.StablecoinDeltaUSD/1e6))
		if !a.seen.Has(key) {
			a.seen.Add(key)
			return a.signal(market, types.ActionBuy, 0.70,
				fmt.Sprintf("stablecoin supply grew $%.0fM in 24h", st.StablecoinDeltaUSD/1e6))
		}
	}
	if st.StablecoinDeltaUSD < a.stableOutUSD {
		key := fmt.Sprintf("stable:%dM", int(st.StablecoinDeltaUSD/1e6))
		if !a.seen.Has(key) {
			a.seen.Add(key)
			return a.signal(market, types.ActionSell, 0.73,
				fmt.Sprintf("stablecoin supply shrank $%.0fM in 24h", -st.StablecoinDeltaUSD/1e6))
		}
	}

	// TVL move.
	if st.PrevDefiTVLUSD > 0 {
		change := (st.DefiTVLUSD - st.PrevDefiTVLUSD) / st.PrevDefiTVLUSD
		key := fmt.Sprintf("tvl:%.1f", change*100)
		if change >= a.tvlMove && !a.seen.Has(key) {
			a.seen.Add(key)
			return a.signal(market, types.ActionBuy, 0.72,
				fmt.Sprintf("DeFi TVL up %.1f%%", change*100))
		}
		if change <= -a.tvlMove && !a.seen.Has(key) {
			a.seen.Add(key)
			return a.signal(market, types.ActionSell, 0.75,
				fmt.Sprintf("DeFi TVL down %.1f%%", -change*100))
		}
	}

	return nil
}

func (a *OnChainAgent) signal(market types.MarketSnapshot, action types.Action, conf float64, reason string) *types.Signal {
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
