package agents

import (
	"fmt"

	"strategy-arena/internal/types"
)

// FedNewsAgent reads only central-bank headlines and maps the policy
// direction to a trade: tightening is sold, easing is bought, a pause is
// bought with less conviction.
type FedNewsAgent struct {
	name string
	seen *seenSet
}

func NewFedNewsAgent(dedupLimit int) *FedNewsAgent {
	return &FedNewsAgent{name: "fed-desk", seen: newSeenSet(dedupLimit)}
}

func (a *FedNewsAgent) Name() string { return a.name }

func (a *FedNewsAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil || len(events.News) == 0 {
		return nil
	}

	for i := range events.News {
		ev := &events.News[i]
		if !isFedRelated(ev) {
			continue
		}
		key := eventKey(ev.Source, ev.Title)
		if a.seen.Has(key) {
			continue
		}

		action, conf, ok := fedDirection(ev)
		if !ok {
			continue
		}
		a.seen.Add(key)

		return &types.Signal{
			Ts:         signalTime(market),
			Symbol:     market.Symbol,
			Action:     action,
			Confidence: conf,
			Size:       100 * conf,
			Reason:     fmt.Sprintf("Fed signal: %s", ev.Title),
			Agent:      a.name,
			Price:      market.Price,
		}
	}
	return nil
}

func fedDirection(ev *types.NewsEvent) (types.Action, float64, bool) {
	text := eventText(ev)
	switch {
	case containsAny(text, []string{"hike", "hawkish", "tighten"}):
		return types.ActionSell, 0.82, true
	case containsAny(text, []string{"cut", "dovish", "easing"}):
		return types.ActionBuy, 0.82, true
	case containsAny(text, []string{"pause", "hold", "unchanged", "steady"}):
		return types.ActionBuy, 0.72, true
	}
	switch ev.Sentiment {
	case "bullish":
		return types.ActionBuy, 0.75, true
	case "bearish":
		return types.ActionSell, 0.75, true
	}
	return "", 0, false
}
