package llmobs

import (
	"context"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/trace"
	"strategy-arena/internal/types"
)

type observableExplainer struct {
	explainer interfaces.Explainer
}

var _ interfaces.Explainer = (*observableExplainer)(nil)

func Wrap(explainer interfaces.Explainer) interfaces.Explainer {
	return &observableExplainer{
		explainer: explainer,
	}
}

func (oe *observableExplainer) Explain(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Explain")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting round explanation",
		"agent", winner.Agent,
		"action", winner.Action,
		"candidates", len(candidates),
	)

	text, err := oe.explainer.Explain(ctx, winner, candidates, market, perf)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get explanation", err,
			"agent", winner.Agent,
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Explanation received",
		"agent", winner.Agent,
		"chars", len(text),
	)

	return text, nil
}
