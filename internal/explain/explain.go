// Package explain renders the rationale for a round's winner. The
// deterministic template always works; an optional delegate (an LLM
// behind interfaces.Explainer) may produce richer text, but any failure
// there falls back to the template and never reaches the caller.
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/metrics"
	"strategy-arena/internal/types"
)

const delegateTimeout = 10 * time.Second

type Provider struct {
	delegate interfaces.Explainer
	metrics  *metrics.Metrics
}

// NewProvider builds a provider. delegate may be nil, in which case the
// deterministic template is always used.
func NewProvider(delegate interfaces.Explainer, m *metrics.Metrics) *Provider {
	return &Provider{delegate: delegate, metrics: m}
}

// Explain renders the winner's rationale. Never returns an empty string
// and never fails.
func (p *Provider) Explain(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) string {
	if p.delegate != nil {
		text, err := p.tryDelegate(ctx, winner, candidates, market, perf)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			logger.Warn(ctx, "Explainer delegate failed, using fallback", "agent", winner.Agent, "error", err.Error())
		}
		p.metrics.ExplainFallback()
	}
	return Deterministic(winner, perf)
}

// tryDelegate bounds the delegate call with a timeout and converts a
// panicking delegate into an error.
func (p *Provider) tryDelegate(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("explainer panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, delegateTimeout)
	defer cancel()
	return p.delegate.Explain(ctx, winner, candidates, market, perf)
}

// Deterministic renders the fallback rationale: agent, confidence, the
// signal's own reason and a compact performance summary.
func Deterministic(winner types.Signal, perf types.AgentSummary) string {
	return fmt.Sprintf("%s selected with %.0f%% confidence. %s | Performance: pnl %.2f, win rate %.0f%%, %d trades, %d epoch wins",
		winner.Agent, winner.Confidence*100, winner.Reason,
		perf.TotalPnL, perf.WinRate*100, perf.Trades, perf.EpochWins)
}
