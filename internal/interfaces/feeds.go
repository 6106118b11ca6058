package interfaces

import (
	"context"

	"strategy-arena/internal/types"
)

type MarketFeed interface {
	Start(ctx context.Context) error
	Snapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error)
	Close() error
}

// EventSource assembles the round's evidence. Categories that cannot be
// fetched in time come back nil; a round never blocks on evidence.
type EventSource interface {
	Snapshot(ctx context.Context, symbol string) *types.EventSnapshot
}
