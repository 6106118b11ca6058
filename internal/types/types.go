package types

import "time"

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

type MarketSnapshot struct {
	Symbol string
	Price  float64
	Volume float64
	Bid    float64
	Ask    float64
	Ts     time.Time
}

type ForecastMarket struct {
	Key     string
	Title   string
	YesProb float64
	Volume  float64
	Source  string
}

type OnChainStats struct {
	ExchangeInflowUSD  float64
	ExchangeFlows      map[string]float64
	StablecoinDeltaUSD float64
	DefiTVLUSD         float64
	PrevDefiTVLUSD     float64
}

type NewsEvent struct {
	Source      string
	Title       string
	Summary     string
	ImpactScore float64
	Sentiment   string
	Keywords    []string
}

// EventSnapshot carries one round's evidence. A nil category means that
// source has no opinion this round.
type EventSnapshot struct {
	Forecasts []ForecastMarket
	OnChain   *OnChainStats
	News      []NewsEvent
}

type Signal struct {
	Ts         time.Time `json:"ts"`
	Symbol     string    `json:"symbol"`
	Action     Action    `json:"action"`
	Confidence float64   `json:"confidence"`
	Size       float64   `json:"size"`
	Reason     string    `json:"reason"`
	Agent      string    `json:"agent"`
	Price      float64   `json:"price"`
}

type TradeOutcome struct {
	Signal    Signal    `json:"signal"`
	PnL       float64   `json:"pnl"`
	ExecPrice float64   `json:"exec_price"`
	Slippage  float64   `json:"slippage"`
	Ts        time.Time `json:"ts"`
}

type AgentSummary struct {
	Name      string  `json:"name"`
	WinRate   float64 `json:"win_rate"`
	Sharpe    float64 `json:"sharpe"`
	TotalPnL  float64 `json:"total_pnl"`
	Trades    int     `json:"trades"`
	EpochWins int     `json:"epoch_wins"`
}

type BattleRound struct {
	Epoch       int64          `json:"epoch"`
	Candidates  []Signal       `json:"candidates"`
	Winner      *Signal        `json:"winner,omitempty"`
	Explanation string         `json:"explanation"`
	Ts          time.Time      `json:"ts"`
	Leaderboard []AgentSummary `json:"leaderboard"`
}
