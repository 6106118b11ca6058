package agents

import (
	"fmt"
	"math"

	"strategy-arena/internal/ta"
	"strategy-arena/internal/types"
)

// MeanReversionAgent fades moves outside a Bollinger band: long below the
// lower band, short above the upper band, nothing inside.
type MeanReversionAgent struct {
	name   string
	period int
	band   float64
	prices []float64
}

func NewMeanReversionAgent(period int, band float64) *MeanReversionAgent {
	if period < 2 {
		period = 20
	}
	if band <= 0 {
		band = 2.0
	}
	return &MeanReversionAgent{name: "mean-reversion", period: period, band: band}
}

func (a *MeanReversionAgent) Name() string { return a.name }

func (a *MeanReversionAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 {
		return nil
	}
	a.prices = append(a.prices, market.Price)

	if len(a.prices) < a.period {
		return nil
	}

	mid, up, low := ta.Bollinger(a.prices, a.period, a.band)
	if math.IsNaN(mid) || mid == 0 {
		return nil
	}

	var action types.Action
	var dist float64
	var reason string
	switch {
	case market.Price < low:
		action = types.ActionBuy
		dist = low - market.Price
		reason = fmt.Sprintf("price %.2f below lower band %.2f", market.Price, low)
	case market.Price > up:
		action = types.ActionSell
		dist = market.Price - up
		reason = fmt.Sprintf("price %.2f above upper band %.2f", market.Price, up)
	default:
		return nil
	}

	conf := math.Min(0.6+dist/mid, 0.95)
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
