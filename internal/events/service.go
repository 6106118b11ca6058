// Package events supplies the per-round evidence snapshot: prediction
// markets, on-chain flow stats and scored news headlines. Every upstream
// is cached and rate limited, and a failing upstream degrades to an
// absent category rather than an error.
package events

import (
	"context"
	"sync"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/store"
	"strategy-arena/internal/types"
)

type forecastSource interface {
	Fetch(ctx context.Context, symbol string) ([]types.ForecastMarket, error)
}

type onchainSource interface {
	Fetch(ctx context.Context) (*types.OnChainStats, error)
}

type newsSource interface {
	Fetch(ctx context.Context, symbol string) ([]types.NewsEvent, error)
}

type Service struct {
	forecast forecastSource
	onchain  onchainSource
	news     newsSource

	forecastTTL time.Duration
	onchainTTL  time.Duration
	newsTTL     time.Duration

	cache   *eventCache
	limiter *multiRateLimiter
}

var _ interfaces.EventSource = (*Service)(nil)

func NewService(cfg *store.Config) *Service {
	s := &Service{
		forecastTTL: time.Duration(cfg.Feeds.Forecast.CacheTTLSec) * time.Second,
		onchainTTL:  time.Duration(cfg.Feeds.OnChain.CacheTTLSec) * time.Second,
		newsTTL:     time.Duration(cfg.Feeds.News.CacheTTLSec) * time.Second,
		cache:       &eventCache{},
		limiter:     newMultiRateLimiter(),
	}

	if cfg.Feeds.Forecast.Enabled {
		s.forecast = NewForecastFeed(cfg.Feeds.Forecast.BaseURL)
		s.limiter.addLimiter("polymarket", 5, 2*time.Second)
	}
	if cfg.Feeds.OnChain.Enabled {
		s.onchain = NewOnChainFeed(cfg.Feeds.OnChain.BaseURL)
		s.limiter.addLimiter("defillama", 5, time.Second)
	}
	if cfg.Feeds.News.Enabled {
		s.news = NewNewsFeed(20 * time.Second)
		s.limiter.addLimiter("news", 2, 10*time.Second)
	}

	return s
}

// Snapshot gathers all enabled categories concurrently. A category that is
// disabled, rate limited out, or failing comes back nil.
func (s *Service) Snapshot(ctx context.Context, symbol string) *types.EventSnapshot {
	snap := &types.EventSnapshot{}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		snap.Forecasts = s.forecasts(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		snap.OnChain = s.onchainStats(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.News = s.newsEvents(ctx, symbol)
	}()
	wg.Wait()

	return snap
}

func (s *Service) forecasts(ctx context.Context, symbol string) []types.ForecastMarket {
	if s.forecast == nil {
		return nil
	}
	if v, ok := s.cache.getForecasts(s.forecastTTL); ok {
		return v
	}
	if err := s.limiter.wait(ctx, "polymarket"); err != nil {
		return nil
	}
	v, err := s.forecast.Fetch(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Forecast fetch failed", err, "symbol", symbol)
		return nil
	}
	s.cache.setForecasts(v)
	return v
}

func (s *Service) onchainStats(ctx context.Context) *types.OnChainStats {
	if s.onchain == nil {
		return nil
	}
	if v, ok := s.cache.getOnChain(s.onchainTTL); ok {
		return v
	}
	if err := s.limiter.wait(ctx, "defillama"); err != nil {
		return nil
	}
	v, err := s.onchain.Fetch(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "On-chain fetch failed", err)
		return nil
	}
	s.cache.setOnChain(v)
	return v
}

func (s *Service) newsEvents(ctx context.Context, symbol string) []types.NewsEvent {
	if s.news == nil {
		return nil
	}
	if v, ok := s.cache.getNews(s.newsTTL); ok {
		return v
	}
	if err := s.limiter.wait(ctx, "news"); err != nil {
		return nil
	}
	v, err := s.news.Fetch(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "News fetch failed", err, "symbol", symbol)
		return nil
	}
	s.cache.setNews(v)
	return v
}

// eventCache holds the latest reading per category. Event feeds are global
// to the market, so one entry per category is enough.
type eventCache struct {
	mu          sync.RWMutex
	forecasts   []types.ForecastMarket
	forecastsAt time.Time
	onchain     *types.OnChainStats
	onchainAt   time.Time
	news        []types.NewsEvent
	newsAt      time.Time
}

func (c *eventCache) getForecasts(ttl time.Duration) ([]types.ForecastMarket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.forecasts == nil || time.Since(c.forecastsAt) > ttl {
		return nil, false
	}
	return c.forecasts, true
}

func (c *eventCache) setForecasts(v []types.ForecastMarket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forecasts = v
	c.forecastsAt = time.Now()
}

func (c *eventCache) getOnChain(ttl time.Duration) (*types.OnChainStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.onchain == nil || time.Since(c.onchainAt) > ttl {
		return nil, false
	}
	return c.onchain, true
}

func (c *eventCache) setOnChain(v *types.OnChainStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onchain = v
	c.onchainAt = time.Now()
}

func (c *eventCache) getNews(ttl time.Duration) ([]types.NewsEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.news == nil || time.Since(c.newsAt) > ttl {
		return nil, false
	}
	return c.news, true
}

func (c *eventCache) setNews(v []types.NewsEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.news = v
	c.newsAt = time.Now()
}
