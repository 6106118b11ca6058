package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"strategy-arena/internal/api"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/types"
)

const defaultStablecoinsURL = "https://stablecoins.llama.fi"

// OnChainFeed assembles aggregate capital-flow stats from DeFiLlama: total
// DeFi TVL and the 24h stablecoin supply delta. Exchange flow data has no
// free public source, so that field is only populated by the replay feed.
type OnChainFeed struct {
	tvlClient    *api.Client
	stableClient *api.Client
}

func NewOnChainFeed(baseURL string) *OnChainFeed {
	return &OnChainFeed{
		tvlClient: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
		stableClient: api.NewClient(
			api.WithBaseURL(defaultStablecoinsURL),
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
	}
}

type tvlPoint struct {
	Date int64   `json:"date"`
	TVL  float64 `json:"tvl"`
}

type stablecoinPoint struct {
	Date             json.RawMessage `json:"date"`
	TotalCirculating struct {
		PeggedUSD float64 `json:"peggedUSD"`
	} `json:"totalCirculatingUSD"`
}

func (f *OnChainFeed) Fetch(ctx context.Context) (*types.OnChainStats, error) {
	stats := &types.OnChainStats{}

	tvlNow, tvlPrev, err := f.fetchTVL(ctx)
	if err != nil {
		return nil, err
	}
	stats.DefiTVLUSD = tvlNow
	stats.PrevDefiTVLUSD = tvlPrev

	delta, err := f.fetchStablecoinDelta(ctx)
	if err != nil {
		// TVL alone is still a usable reading.
		logger.Warn(ctx, "Stablecoin supply fetch failed", "error", err.Error())
	} else {
		stats.StablecoinDeltaUSD = delta
	}

	return stats, nil
}

func (f *OnChainFeed) fetchTVL(ctx context.Context) (now, prev float64, err error) {
	resp, err := f.tvlClient.GET(ctx, "/v2/historicalChainTvl", api.JSONHeaders())
	if err != nil {
		return 0, 0, fmt.Errorf("defillama tvl: %w", err)
	}

	var points []tvlPoint
	if err := resp.ParseJSON(&points); err != nil {
		return 0, 0, fmt.Errorf("defillama tvl: %w", err)
	}
	if len(points) < 2 {
		return 0, 0, fmt.Errorf("defillama tvl: got %d points, need 2", len(points))
	}

	return points[len(points)-1].TVL, points[len(points)-2].TVL, nil
}

func (f *OnChainFeed) fetchStablecoinDelta(ctx context.Context) (float64, error) {
	resp, err := f.stableClient.GET(ctx, "/stablecoincharts/all", api.JSONHeaders())
	if err != nil {
		return 0, fmt.Errorf("defillama stablecoins: %w", err)
	}

	var points []stablecoinPoint
	if err := resp.ParseJSON(&points); err != nil {
		return 0, fmt.Errorf("defillama stablecoins: %w", err)
	}
	if len(points) < 2 {
		return 0, fmt.Errorf("defillama stablecoins: got %d points, need 2", len(points))
	}

	latest := points[len(points)-1].TotalCirculating.PeggedUSD
	previous := points[len(points)-2].TotalCirculating.PeggedUSD
	return latest - previous, nil
}
