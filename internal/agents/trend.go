package agents

import (
	"fmt"
	"math"

	"strategy-arena/internal/ta"
	"strategy-arena/internal/types"
)

// TrendAgent trades moving-average crossovers: long when the fast mean is
// above the slow mean, short when below.
type TrendAgent struct {
	name   string
	fast   int
	slow   int
	prices []float64
}

func NewTrendAgent(fast, slow int) *TrendAgent {
	if fast <= 0 {
		fast = 10
	}
	if slow <= fast {
		slow = 3 * fast
	}
	return &TrendAgent{name: "trend-follower", fast: fast, slow: slow}
}

func (a *TrendAgent) Name() string { return a.name }

func (a *TrendAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 {
		return nil
	}
	a.prices = append(a.prices, market.Price)

	// No opinion until the slow window is full.
	if len(a.prices) < a.slow {
		return nil
	}

	fast := ta.SMA(a.prices, a.fast)
	slow := ta.SMA(a.prices, a.slow)
	if math.IsNaN(fast) || math.IsNaN(slow) || slow == 0 {
		return nil
	}

	var action types.Action
	var reason string
	switch {
	case fast > slow:
		action = types.ActionBuy
		reason = fmt.Sprintf("fast MA %.2f above slow MA %.2f", fast, slow)
	case fast < slow:
		action = types.ActionSell
		reason = fmt.Sprintf("fast MA %.2f below slow MA %.2f", fast, slow)
	default:
		return nil
	}

	conf := math.Min(0.5+math.Abs(fast-slow)/slow, 0.95)
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
