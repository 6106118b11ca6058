package interfaces

import (
	"strategy-arena/internal/types"
)

type StrategyAgent interface {
	Name() string
	Evaluate(market types.MarketSnapshot, events *types.EventSnapshot) *types.Signal
}
