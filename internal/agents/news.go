package agents

import (
	"fmt"
	"math"
	"strings"

	"strategy-arena/internal/types"
)

var fedKeywords = []string{"fed", "fomc", "federal reserve", "powell", "rate decision"}

// NewsAgent trades the highest-impact unseen headline. Fed-related events
// get their impact scaled up before the threshold check; direction comes
// from the event's sentiment tag.
type NewsAgent struct {
	name            string
	impactThreshold float64
	fedMultiplier   float64
	seen            *seenSet
}

func NewNewsAgent(impactThreshold, fedMultiplier float64, dedupLimit int) *NewsAgent {
	if impactThreshold <= 0 {
		impactThreshold = 2.0
	}
	if fedMultiplier <= 0 {
		fedMultiplier = 1.5
	}
	return &NewsAgent{
		name:            "news-desk",
		impactThreshold: impactThreshold,
		fedMultiplier:   fedMultiplier,
		seen:            newSeenSet(dedupLimit),
	}
}

func (a *NewsAgent) Name() string { return a.name }

func (a *NewsAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil || len(events.News) == 0 {
		return nil
	}

	// Highest weighted-impact event not yet acted on.
	var best *types.NewsEvent
	var bestImpact float64
	for i := range events.News {
		ev := &events.News[i]
		if a.seen.Has(eventKey(ev.Source, ev.Title)) {
			continue
		}
		w := ev.ImpactScore
		if isFedRelated(ev) {
			w *= a.fedMultiplier
		}
		if w < a.impactThreshold {
			continue
		}
		if best == nil || w > bestImpact {
			best = ev
			bestImpact = w
		}
	}
	if best == nil {
		return nil
	}

	action, conf, ok := a.direction(best, bestImpact)
	if !ok {
		return nil
	}
	a.seen.Add(eventKey(best.Source, best.Title))

	return &types.Signal{
		Ts:         signalTime(market),
		Symbol:     market.Symbol,
		Action:     action,
		Confidence: conf,
		Size:       100 * conf,
		Reason:     fmt.Sprintf("%s: %s (impact %.1f, %s)", best.Source, best.Title, best.ImpactScore, best.Sentiment),
		Agent:      a.name,
		Price:      market.Price,
	}
}

func (a *NewsAgent) direction(ev *types.NewsEvent, weightedImpact float64) (types.Action, float64, bool) {
	switch strings.ToLower(ev.Sentiment) {
	case "bullish":
		return types.ActionBuy, math.Min(0.88, 0.6+weightedImpact/10), true
	case "bearish":
		return types.ActionSell, math.Min(0.88, 0.6+weightedImpact/10), true
	}

	// Neutral wire copy still moves markets in two cases: Fed speak reads
	// hawkish by default, ETF approval chatter reads bullish.
	text := eventText(ev)
	if isFedRelated(ev) {
		return types.ActionSell, 0.65, true
	}
	if strings.Contains(text, "etf") && containsAny(text, []string{"sec", "approv"}) {
		return types.ActionBuy, 0.70, true
	}
	return "", 0, false
}

func isFedRelated(ev *types.NewsEvent) bool {
	return containsAny(eventText(ev), fedKeywords)
}

func eventText(ev *types.NewsEvent) string {
	parts := []string{ev.Source, ev.Title, ev.Summary}
	parts = append(parts, ev.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}
