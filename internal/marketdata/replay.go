// Package marketdata provides the market snapshot feeds the arena runs
// on: a seeded replay walk for deterministic runs and a Binance
// websocket feed for live ticks.
package marketdata

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/types"
)

var basePrices = map[string]float64{
	"BTCUSDT": 64000,
	"ETHUSDT": 3300,
	"SOLUSDT": 150,
}

// ReplayFeed synthesizes a random walk per symbol from one seed, so the
// same seed always produces the same price path.
type ReplayFeed struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64
}

var _ interfaces.MarketFeed = (*ReplayFeed)(nil)

func NewReplayFeed(seed int64) *ReplayFeed {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ReplayFeed{
		rng:    rand.New(rand.NewSource(seed)),
		prices: make(map[string]float64),
	}
}

func (f *ReplayFeed) Start(ctx context.Context) error {
	return nil
}

// Snapshot advances the walk one tick and returns the new state.
func (f *ReplayFeed) Snapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	if symbol == "" {
		return types.MarketSnapshot{}, fmt.Errorf("symbol required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	price, ok := f.prices[symbol]
	if !ok {
		price = basePrices[symbol]
		if price == 0 {
			price = 100
		}
	}

	// Walk step: up to ±0.5% per tick with a slight upward drift.
	move := (f.rng.Float64() - 0.495) * 0.01
	price *= 1 + move
	f.prices[symbol] = price

	spread := price * 0.0002
	return types.MarketSnapshot{
		Symbol: symbol,
		Price:  price,
		Volume: 50 + f.rng.Float64()*500,
		Bid:    price - spread/2,
		Ask:    price + spread/2,
		Ts:     time.Now(),
	}, nil
}

func (f *ReplayFeed) Close() error {
	return nil
}
