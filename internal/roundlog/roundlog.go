// Package roundlog appends every battle round to a daily JSON-lines file
// for audit. Files older than the retention window are gzip-compressed.
package roundlog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"strategy-arena/internal/types"
)

type Logger struct {
	mu  sync.Mutex
	dir string
}

// New builds a round logger writing under dir. An empty dir falls back to
// the ARENA_ROUND_DIR environment variable, then to "rounds".
func New(dir string) *Logger {
	if dir == "" {
		dir = os.Getenv("ARENA_ROUND_DIR")
	}
	if dir == "" {
		dir = "rounds"
	}
	return &Logger{dir: dir}
}

func (l *Logger) dailyFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(l.dir, "rounds_"+d+".jsonl")
}

// Append writes one round as a JSON line. A nil logger drops the round.
func (l *Logger) Append(round types.BattleRound) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := round.Ts
	if ts.IsZero() {
		ts = time.Now()
	}
	p := l.dailyFilepath(ts)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(round)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns the rounds recorded for t's UTC date. A missing file is
// an empty day, not an error.
func (l *Logger) ReadDay(t time.Time) ([]types.BattleRound, error) {
	if l == nil {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.dailyFilepath(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var rounds []types.BattleRound
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r types.BattleRound
		if err := json.Unmarshal(line, &r); err != nil {
			// A torn trailing line from a crashed run is skipped.
			continue
		}
		rounds = append(rounds, r)
	}
	return rounds, sc.Err()
}

// CompressOlder gzips round files whose mtime is beyond retentionDays.
func (l *Logger) CompressOlder(retentionDays int) error {
	if l == nil || retentionDays <= 0 {
		return nil
	}
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
