package noop

import (
	"context"

	"strategy-arena/internal/logger"
	"strategy-arena/internal/types"
)

// NoopExplainer is the fallback when no LLM is configured. It returns no
// text, which makes the explanation provider use its deterministic template.
type NoopExplainer struct{}

func NewNoopExplainer() *NoopExplainer {
	return &NoopExplainer{}
}

func (e *NoopExplainer) Explain(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) (string, error) {
	logger.Debug(ctx, "Noop explainer called - deterministic template will be used", "agent", winner.Agent)
	return "", nil
}
