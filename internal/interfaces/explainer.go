package interfaces

import (
	"context"

	"strategy-arena/internal/types"
)

type Explainer interface {
	Explain(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) (string, error)
}
