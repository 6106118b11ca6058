package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"strategy-arena/internal/api"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/types"
)

const maxForecastMarkets = 40

// ForecastFeed pulls active prediction markets from the Polymarket gamma
// API, highest volume first.
type ForecastFeed struct {
	client *api.Client
}

func NewForecastFeed(baseURL string) *ForecastFeed {
	return &ForecastFeed{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
	}
}

// gammaMarket mirrors the subset of the gamma /markets payload we read.
// outcomePrices is a JSON-encoded string array inside a string.
type gammaMarket struct {
	Slug          string      `json:"slug"`
	Question      string      `json:"question"`
	OutcomePrices string      `json:"outcomePrices"`
	Volume        json.Number `json:"volume"`
}

func (f *ForecastFeed) Fetch(ctx context.Context, symbol string) ([]types.ForecastMarket, error) {
	path := fmt.Sprintf("/markets?active=true&closed=false&order=volume&ascending=false&limit=%d", maxForecastMarkets)
	resp, err := f.client.GET(ctx, path, api.JSONHeaders())
	if err != nil {
		return nil, fmt.Errorf("polymarket markets: %w", err)
	}

	var raw []gammaMarket
	if err := resp.ParseJSON(&raw); err != nil {
		return nil, fmt.Errorf("polymarket markets: %w", err)
	}

	markets := make([]types.ForecastMarket, 0, len(raw))
	for _, m := range raw {
		if m.Question == "" {
			continue
		}
		yes, ok := yesProbability(m.OutcomePrices)
		if !ok {
			continue
		}
		vol, _ := m.Volume.Float64()
		markets = append(markets, types.ForecastMarket{
			Key:     m.Slug,
			Title:   m.Question,
			YesProb: yes,
			Volume:  vol,
			Source:  "polymarket",
		})
	}

	logger.Debug(ctx, "Forecast markets fetched", "symbol", symbol, "markets", len(markets))
	return markets, nil
}

// yesProbability unpacks the first outcome price from the doubly encoded
// outcomePrices field, e.g. "[\"0.68\", \"0.32\"]".
func yesProbability(encoded string) (float64, bool) {
	if encoded == "" {
		return 0, false
	}
	var prices []string
	if err := json.Unmarshal([]byte(encoded), &prices); err != nil || len(prices) == 0 {
		return 0, false
	}
	p, err := strconv.ParseFloat(prices[0], 64)
	if err != nil || p < 0 || p > 1 {
		return 0, false
	}
	return p, true
}
