package agents

import (
	"fmt"
	"math"
	"strings"

	"strategy-arena/internal/types"
)

// Fusion outcomes. Conflict and insufficient evidence both emit no signal
// but are distinct results: one means the sources disagree, the other
// means too few sources spoke at all.
const (
	fuseConfirmed    = "confirmed"
	fuseInsufficient = "insufficient_evidence"
	fuseConflict     = "conflict"
)

type sourceVote struct {
	source string
	action types.Action
	detail string
}

type fusion struct {
	outcome string
	action  types.Action
	conf    float64
	agree   int
	total   int
	reason  string
}

// fuseVotes turns independent per-source directional votes into one fused
// decision. At least threshold sources must vote, and at least threshold
// of them must agree on a direction. Confidence rewards broader agreement:
// 0.70 base plus 0.07 per agreeing vote, capped at 1.0.
func fuseVotes(votes []sourceVote, threshold int) fusion {
	n := len(votes)
	if n < threshold {
		return fusion{outcome: fuseInsufficient, total: n}
	}

	buys, sells := 0, 0
	for _, v := range votes {
		switch v.action {
		case types.ActionBuy:
			buys++
		case types.ActionSell:
			sells++
		}
	}

	agree := buys
	action := types.ActionBuy
	if sells > buys {
		agree = sells
		action = types.ActionSell
	}
	if agree < threshold {
		return fusion{outcome: fuseConflict, total: n}
	}

	conf := math.Min(1.0, 0.70+0.07*float64(agree))

	details := make([]string, 0, n)
	for _, v := range votes {
		details = append(details, fmt.Sprintf("%s: %s (%s)", v.source, v.detail, v.action))
	}
	reason := fmt.Sprintf("%d/%d sources confirm %s | %s | Multi-source conviction: %.0f%%",
		agree, n, action, strings.Join(details, " + "), conf*100)

	return fusion{
		outcome: fuseConfirmed,
		action:  action,
		conf:    conf,
		agree:   agree,
		total:   n,
		reason:  reason,
	}
}

// HybridAgent runs its own forecast-market, on-chain and news detectors
// and only trades when enough of them independently agree on a direction.
type HybridAgent struct {
	name      string
	threshold int
	seen      *seenSet

	forecastCutoff float64
	inflowUSD      float64
	stableInUSD    float64
	stableOutUSD   float64
	tvlMove        float64
	newsImpactMin  float64
}

// NewHybridAgent builds a confirmation agent requiring confirmationThreshold
// agreeing sources (2 = majority of three, 3 = strict unanimity).
func NewHybridAgent(confirmationThreshold, dedupLimit int) *HybridAgent {
	if confirmationThreshold < 1 {
		confirmationThreshold = 2
	}
	if confirmationThreshold > 3 {
		confirmationThreshold = 3
	}
	return &HybridAgent{
		name:           fmt.Sprintf("hybrid-%dof3", confirmationThreshold),
		threshold:      confirmationThreshold,
		seen:           newSeenSet(dedupLimit),
		forecastCutoff: 0.65,
		inflowUSD:      300_000_000,
		stableInUSD:    400_000_000,
		stableOutUSD:   -300_000_000,
		tvlMove:        0.05,
		newsImpactMin:  2.0,
	}
}

func (a *HybridAgent) Name() string { return a.name }

func (a *HybridAgent) Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal {
	if market.Price <= 0 || events == nil {
		return nil
	}

	votes := make([]sourceVote, 0, 3)
	if v := a.checkForecast(events.Forecasts); v != nil {
		votes = append(votes, *v)
	}
	if v := a.checkOnChain(events.OnChain); v != nil {
		votes = append(votes, *v)
	}
	if v := a.checkNews(events.News); v != nil {
		votes = append(votes, *v)
	}

	f := fuseVotes(votes, a.threshold)
	if f.outcome != fuseConfirmed {
		return nil
	}

	return &types.Signal{
		Ts:         signalTime(market),
		Symbol:     market.Symbol,
		Action:     f.action,
		Confidence: f.conf,
		Size:       100 * f.conf,
		Reason:     f.reason,
		Agent:      a.name,
		Price:      market.Price,
	}
}

func (a *HybridAgent) checkForecast(forecasts []types.ForecastMarket) *sourceVote {
	for _, fm := range forecasts {
		action, ok := forecastDirection(fm, a.forecastCutoff)
		if !ok {
			continue
		}
		return &sourceVote{
			source: "Polymarket",
			action: action,
			detail: fmt.Sprintf("%s at %.0f%% yes", fm.Title, fm.YesProb*100),
		}
	}
	return nil
}

func (a *HybridAgent) checkOnChain(st *types.OnChainStats) *sourceVote {
	if st == nil {
		return nil
	}
	if st.ExchangeInflowUSD > a.inflowUSD {
		return &sourceVote{
			source: "On-chain",
			action: types.ActionBuy,
			detail: fmt.Sprintf("$%.0fM exchange inflow", st.ExchangeInflowUSD/1e6),
		}
	}
	if st.StablecoinDeltaUSD > a.stableInUSD {
		return &sourceVote{
			source: "On-chain",
			action: types.ActionBuy,
			detail: fmt.Sprintf("stablecoin supply +$%.0fM", st.StablecoinDeltaUSD/1e6),
		}
	}
	if st.StablecoinDeltaUSD < a.stableOutUSD {
		return &sourceVote{
			source: "On-chain",
			action: types.ActionSell,
			detail: fmt.Sprintf("stablecoin supply -$%.0fM", -st.StablecoinDeltaUSD/1e6),
		}
	}
	if st.PrevDefiTVLUSD > 0 {
		change := (st.DefiTVLUSD - st.PrevDefiTVLUSD) / st.PrevDefiTVLUSD
		if change >= a.tvlMove {
			return &sourceVote{
				source: "On-chain",
				action: types.ActionBuy,
				detail: fmt.Sprintf("TVL +%.1f%%", change*100),
			}
		}
		if change <= -a.tvlMove {
			return &sourceVote{
				source: "On-chain",
				action: types.ActionSell,
				detail: fmt.Sprintf("TVL %.1f%%", change*100),
			}
		}
	}
	return nil
}

func (a *HybridAgent) checkNews(news []types.NewsEvent) *sourceVote {
	var best *types.NewsEvent
	for i := range news {
		ev := &news[i]
		if ev.ImpactScore < a.newsImpactMin {
			continue
		}
		if a.seen.Has(eventKey(ev.Source, ev.Title)) {
			continue
		}
		if ev.Sentiment != "bullish" && ev.Sentiment != "bearish" {
			continue
		}
		if best == nil || ev.ImpactScore > best.ImpactScore {
			best = ev
		}
	}
	if best == nil {
		return nil
	}
	a.seen.Add(eventKey(best.Source, best.Title))

	action := types.ActionBuy
	if best.Sentiment == "bearish" {
		action = types.ActionSell
	}
	return &sourceVote{
		source: "News",
		action: action,
		detail: fmt.Sprintf("%s (impact %.1f)", best.Title, best.ImpactScore),
	}
}
