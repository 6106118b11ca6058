// Package report turns a day's battle rounds into a CSV summary: one
// row per agent with its wins and final track record, plus a totals row.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/roundlog"
	"strategy-arena/internal/types"
)

type agentAgg struct {
	Name        string
	Wins        int
	BuySignals  int
	SellSignals int
	ConfSum     float64
}

type Summarizer struct {
	audit *roundlog.Logger
	dir   string
}

var _ interfaces.Reporter = (*Summarizer)(nil)

func NewSummarizer(audit *roundlog.Logger, dir string) *Summarizer {
	if dir == "" {
		if v := os.Getenv("ARENA_REPORT_DIR"); v != "" {
			dir = v
		} else {
			dir = "reports"
		}
	}
	return &Summarizer{audit: audit, dir: dir}
}

func (s *Summarizer) csvPath(t time.Time) string {
	return filepath.Join(s.dir, t.UTC().Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates the day's rounds into a CSV file and returns
// its path. A day with no rounds returns an empty path and no error.
func (s *Summarizer) SummarizeDay(t time.Time) (string, error) {
	rounds, err := s.audit.ReadDay(t)
	if err != nil {
		return "", err
	}
	if len(rounds) == 0 {
		return "", nil
	}

	aggs := map[string]*agentAgg{}
	decided := 0
	for _, round := range rounds {
		if round.Winner == nil {
			continue
		}
		decided++
		row := aggs[round.Winner.Agent]
		if row == nil {
			row = &agentAgg{Name: round.Winner.Agent}
			aggs[round.Winner.Agent] = row
		}
		row.Wins++
		row.ConfSum += round.Winner.Confidence
		switch round.Winner.Action {
		case types.ActionBuy:
			row.BuySignals++
		case types.ActionSell:
			row.SellSignals++
		}
	}

	// The last round's leaderboard carries each agent's closing track
	// record, including agents that never won today.
	finalBoard := map[string]types.AgentSummary{}
	var boardOrder []string
	for _, entry := range rounds[len(rounds)-1].Leaderboard {
		finalBoard[entry.Name] = entry
		boardOrder = append(boardOrder, entry.Name)
	}
	for name := range aggs {
		if _, ok := finalBoard[name]; !ok {
			boardOrder = append(boardOrder, name)
		}
	}
	sort.SliceStable(boardOrder, func(i, j int) bool {
		return finalBoard[boardOrder[i]].TotalPnL > finalBoard[boardOrder[j]].TotalPnL
	})

	outPath := s.csvPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	headers := []string{"agent", "rounds_won", "buy_wins", "sell_wins", "avg_confidence",
		"win_rate", "sharpe", "total_pnl", "epoch_wins"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var totalPnL float64
	totalBuy, totalSell := 0, 0
	for _, name := range boardOrder {
		agg := aggs[name]
		if agg == nil {
			agg = &agentAgg{Name: name}
		}
		var avgConf float64
		if agg.Wins > 0 {
			avgConf = agg.ConfSum / float64(agg.Wins)
		}
		board := finalBoard[name]
		rec := []string{
			name,
			strconv.Itoa(agg.Wins),
			strconv.Itoa(agg.BuySignals),
			strconv.Itoa(agg.SellSignals),
			fmt.Sprintf("%.4f", avgConf),
			fmt.Sprintf("%.4f", board.WinRate),
			fmt.Sprintf("%.4f", board.Sharpe),
			fmt.Sprintf("%.2f", board.TotalPnL),
			strconv.Itoa(board.EpochWins),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalPnL += board.TotalPnL
		totalBuy += agg.BuySignals
		totalSell += agg.SellSignals
	}

	_ = w.Write([]string{
		"TOTAL",
		strconv.Itoa(decided),
		strconv.Itoa(totalBuy),
		strconv.Itoa(totalSell),
		"",
		"",
		"",
		fmt.Sprintf("%.2f", totalPnL),
		"",
	})
	return outPath, nil
}

func (s *Summarizer) SummarizeToday() (string, error) {
	return s.SummarizeDay(time.Now().UTC())
}
