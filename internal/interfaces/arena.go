package interfaces

import (
	"context"

	"strategy-arena/internal/types"
)

type Arena interface {
	RunRound(ctx context.Context, market types.MarketSnapshot, events *types.EventSnapshot) (*types.BattleRound, error)
	RecordOutcome(ctx context.Context, out types.TradeOutcome) error
	Leaderboard() []types.AgentSummary
	History() []types.BattleRound
}
