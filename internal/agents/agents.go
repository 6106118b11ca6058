// Package agents holds the strategy agents that compete in the arena.
// Each agent implements interfaces.StrategyAgent: it inspects one round's
// market and evidence snapshots and emits at most one signal. Agents keep
// no external state beyond a bounded memory of events already acted on.
package agents

import (
	"strings"
	"time"

	"strategy-arena/internal/types"
)

const defaultSeenLimit = 512

// seenSet remembers event identities an agent has already acted on.
// When the cap is reached the oldest identity is evicted.
type seenSet struct {
	limit int
	keys  map[string]struct{}
	order []string
}

func newSeenSet(limit int) *seenSet {
	if limit <= 0 {
		limit = defaultSeenLimit
	}
	return &seenSet{limit: limit, keys: make(map[string]struct{})}
}

func (s *seenSet) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *seenSet) Add(key string) {
	if _, ok := s.keys[key]; ok {
		return
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)
	if len(s.order) > s.limit {
		delete(s.keys, s.order[0])
		s.order = s.order[1:]
	}
}

// eventKey builds the dedup identity for a news-style event: source plus
// title truncated to 50 characters.
func eventKey(source, title string) string {
	if len(title) > 50 {
		title = title[:50]
	}
	return source + ":" + title
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func signalTime(market types.MarketSnapshot) time.Time {
	if market.Ts.IsZero() {
		return time.Now()
	}
	return market.Ts
}
