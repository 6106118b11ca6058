package agents

import (
	"fmt"
	"strings"

	"strategy-arena/internal/types"
)

// SECNewsAgent reads regulatory headlines. ETF decisions dominate:
// approvals are the strongest buy this desk knows, rejections and
// enforcement actions are sold.
type SECNewsAgent struct {
	name string
	seen *seenSet
}

func NewSECNewsAgent(dedupLimit int) *SECNewsAgent {
	return &SECNewsAgent{name: "sec-desk", seen: newSeenSet(dedupLimit)}
}

func (a *SECNewsAgent) Name() string { return a.name }

func (a *SECNewsAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil || len(events.News) == 0 {
		return nil
	}

	for i := range events.News {
		ev := &events.News[i]
		text := eventText(ev)
		if !containsAny(text, []string{"sec", "etf", "regulator"}) {
			continue
		}
		key := eventKey(ev.Source, ev.Title)
		if a.seen.Has(key) {
			continue
		}

		action, conf, ok := secDirection(text)
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
			Reason:     fmt.Sprintf("Regulatory signal: %s", ev.Title),
			Agent:      a.name,
			Price:      market.Price,
		}
	}
	return nil
}

func secDirection(text string) (types.Action, float64, bool) {
	etf := strings.Contains(text, "etf")
	switch {
	case etf && strings.Contains(text, "approv"):
		return types.ActionBuy, 0.92, true
	case etf && containsAny(text, []string{"reject", "deni", "denial"}):
		return types.ActionSell, 0.85, true
	case containsAny(text, []string{"enforcement", "lawsuit", "sues", "charge"}):
		return types.ActionSell, 0.73, true
	}
	return "", 0, false
}
