package arena

import (
	"math/rand"
	"time"

	"strategy-arena/internal/types"
)

// AgentStats supplies the historical numbers the exploitation score reads.
// perf.Tracker satisfies it.
type AgentStats interface {
	WinRate(agent string) float64
	EpochWins(agent string) int
}

// Selector picks one winner among a round's candidates with an
// epsilon-greedy policy: explore uniformly at random with probability
// epsilon, otherwise exploit the highest-scoring candidate. The score
// blends current confidence with the producing agent's track record.
type Selector struct {
	epsilon float64
	wConf   float64
	wWin    float64
	wEpoch  float64
	rng     *rand.Rand
}

type SelectorOption func(*Selector)

func WithEpsilon(epsilon float64) SelectorOption {
	return func(s *Selector) { s.epsilon = epsilon }
}

func WithWeights(confidence, winRate, epochShare float64) SelectorOption {
	return func(s *Selector) {
		s.wConf = confidence
		s.wWin = winRate
		s.wEpoch = epochShare
	}
}

// WithRand injects the random source. Selection must draw from one
// logical stream across rounds, so the same *rand.Rand is reused for the
// life of the selector.
func WithRand(rng *rand.Rand) SelectorOption {
	return func(s *Selector) { s.rng = rng }
}

func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{epsilon: 0.15, wConf: 0.5, wWin: 0.3, wEpoch: 0.2}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Select returns the winning candidate, or ok=false when the round has no
// candidates. totalEpochs is the number of rounds run so far and
// normalizes the epoch-win share of the score. Exploitation ties resolve
// to the earliest candidate.
func (s *Selector) Select(candidates []types.Signal, stats AgentStats, totalEpochs int64) (types.Signal, bool) {
	if len(candidates) == 0 {
		return types.Signal{}, false
	}

	if s.rng.Float64() < s.epsilon {
		return candidates[s.rng.Intn(len(candidates))], true
	}

	epochs := totalEpochs
	if epochs < 1 {
		epochs = 1
	}

	bestIdx := 0
	bestScore := s.score(candidates[0], stats, epochs)
	for i := 1; i < len(candidates); i++ {
		if sc := s.score(candidates[i], stats, epochs); sc > bestScore {
			bestIdx = i
			bestScore = sc
		}
	}
	return candidates[bestIdx], true
}

func (s *Selector) score(c types.Signal, stats AgentStats, totalEpochs int64) float64 {
	epochShare := float64(stats.EpochWins(c.Agent)) / float64(totalEpochs)
	return s.wConf*c.Confidence + s.wWin*stats.WinRate(c.Agent) + s.wEpoch*epochShare
}
