package arenaobs

import (
	"context"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/trace"
	"strategy-arena/internal/types"
)

type observableArena struct {
	arena interfaces.Arena
}

var _ interfaces.Arena = (*observableArena)(nil)

func Wrap(a interfaces.Arena) interfaces.Arena {
	return &observableArena{
		arena: a,
	}
}

func (oa *observableArena) RunRound(ctx context.Context, market types.MarketSnapshot, events *types.EventSnapshot) (*types.BattleRound, error) {
	ctx, span := trace.StartSpan(ctx, "arena.RunRound")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting battle round",
		"symbol", market.Symbol,
		"price", market.Price,
	)

	round, err := oa.arena.RunRound(ctx, market, events)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Battle round failed", err,
			"symbol", market.Symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	winner := "none"
	confidence := 0.0
	if round.Winner != nil {
		winner = round.Winner.Agent
		confidence = round.Winner.Confidence
	}
	logger.InfoSkip(ctx, 1, "Battle round completed",
		"epoch", round.Epoch,
		"candidates", len(round.Candidates),
		"winner", winner,
		"confidence", confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return round, nil
}

func (oa *observableArena) RecordOutcome(ctx context.Context, out types.TradeOutcome) error {
	ctx, span := trace.StartSpan(ctx, "arena.RecordOutcome")
	defer span.End()

	start := time.Now()

	err := oa.arena.RecordOutcome(ctx, out)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Outcome recording failed", err,
			"agent", out.Signal.Agent,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Outcome recorded",
		"agent", out.Signal.Agent,
		"pnl", out.PnL,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

func (oa *observableArena) Leaderboard() []types.AgentSummary {
	return oa.arena.Leaderboard()
}

func (oa *observableArena) History() []types.BattleRound {
	return oa.arena.History()
}
