package events

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"strategy-arena/internal/logger"
	"strategy-arena/internal/types"
)

// NewsFeed scrapes crypto news headlines and scores them for impact and
// sentiment so the news desks can trade them.
type NewsFeed struct {
	sources []NewsSource
	timeout time.Duration
}

// NewsSource defines a news source configuration
type NewsSource struct {
	Name      string
	BaseURL   string
	ListPath  string
	Selectors ArticleSelectors
	RateLimit time.Duration
}

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Summary          string
}

func NewNewsFeed(timeout time.Duration) *NewsFeed {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &NewsFeed{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:     "coindesk",
			BaseURL:  "https://www.coindesk.com",
			ListPath: "/markets",
			Selectors: ArticleSelectors{
				ArticleContainer: "article",
				Title:            "h2 a, h3 a, h4 a",
				URL:              "h2 a, h3 a, h4 a",
				Summary:          "p",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:     "cointelegraph",
			BaseURL:  "https://cointelegraph.com",
			ListPath: "/category/market-analysis",
			Selectors: ArticleSelectors{
				ArticleContainer: "article",
				Title:            "a span, h2 a",
				URL:              "a",
				Summary:          "p",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:     "theblock",
			BaseURL:  "https://www.theblock.co",
			ListPath: "/latest",
			Selectors: ArticleSelectors{
				ArticleContainer: "article",
				Title:            "h2, h3",
				URL:              "a",
				Summary:          "p",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

const maxEventsPerSource = 10

// Fetch scrapes all sources and returns scored events.
func (f *NewsFeed) Fetch(ctx context.Context, symbol string) ([]types.NewsEvent, error) {
	logger.Info(ctx, "Starting news scrape", "symbol", symbol, "sources", len(f.sources))

	allEvents := []types.NewsEvent{}
	for _, source := range f.sources {
		events, err := f.scrapeSource(ctx, source)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name)
			continue
		}
		allEvents = append(allEvents, events...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	logger.Info(ctx, "News scrape completed", "symbol", symbol, "events", len(allEvents))
	return allEvents, nil
}

func (f *NewsFeed) scrapeSource(ctx context.Context, source NewsSource) ([]types.NewsEvent, error) {
	events := []types.NewsEvent{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)

	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(events) >= maxEventsPerSource {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		summary := firstParagraph(e.DOM.Find(source.Selectors.Summary))

		ev := types.NewsEvent{
			Source:  source.Name,
			Title:   title,
			Summary: summary,
		}
		scoreEvent(&ev)
		events = append(events, ev)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	if err := c.Visit(source.BaseURL + source.ListPath); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", source.BaseURL+source.ListPath, err)
	}

	c.Wait()

	return events, nil
}

// firstParagraph returns the first paragraph of real copy in a selection,
// skipping bylines and timestamps.
func firstParagraph(sel *goquery.Selection) string {
	var out string
	sel.EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) > 40 {
			out = text
			return false
		}
		return true
	})
	return out
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Impact ladder. A headline starts at 1.0 and takes the highest tier any
// of its keywords reaches.
var (
	criticalImpactKeywords = []string{"hack", "exploit", "bankrupt", "collapse", "emergency", "depeg"}
	majorImpactKeywords    = []string{"etf", "sec", "fed", "fomc", "rate decision", "halving", "regulation", "treasury"}
	notableImpactKeywords  = []string{"whale", "institutional", "adoption", "lawsuit", "upgrade", "partnership"}

	bullishWords = []string{"surge", "rally", "soar", "approval", "approv", "adopt", "bullish", "record high", "inflow", "accumul", "breakout"}
	bearishWords = []string{"crash", "plunge", "dump", "reject", "ban", "hack", "exploit", "sell-off", "bearish", "outflow", "sues", "liquidation"}
)

// scoreEvent fills in ImpactScore, Sentiment and Keywords from the title
// and summary text.
func scoreEvent(ev *types.NewsEvent) {
	text := strings.ToLower(ev.Title + " " + ev.Summary)

	impact := 1.0
	var matched []string
	for _, k := range notableImpactKeywords {
		if strings.Contains(text, k) {
			impact = 2.0
			matched = append(matched, k)
		}
	}
	for _, k := range majorImpactKeywords {
		if strings.Contains(text, k) {
			impact = 3.0
			matched = append(matched, k)
		}
	}
	for _, k := range criticalImpactKeywords {
		if strings.Contains(text, k) {
			impact = 4.0
			matched = append(matched, k)
		}
	}
	ev.ImpactScore = impact
	ev.Keywords = matched

	bulls, bears := 0, 0
	for _, w := range bullishWords {
		if strings.Contains(text, w) {
			bulls++
		}
	}
	for _, w := range bearishWords {
		if strings.Contains(text, w) {
			bears++
		}
	}
	switch {
	case bulls > bears:
		ev.Sentiment = "bullish"
	case bears > bulls:
		ev.Sentiment = "bearish"
	default:
		ev.Sentiment = ""
	}
}
