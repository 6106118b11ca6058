package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"strategy-arena/internal/interfaces"
	"strategy-arena/internal/logger"
	"strategy-arena/internal/types"
)

const (
	defaultWsURL = "wss://stream.binance.com:9443/ws"
	readTimeout  = 30 * time.Second
	staleAfter   = 2 * time.Minute
)

// BinanceFeed subscribes to Binance 24h ticker streams and keeps the
// latest tick per symbol. The read loop reconnects on failure with an
// escalating backoff.
type BinanceFeed struct {
	wsURL        string
	symbols      []string
	maxRetries   int
	retryBackoff time.Duration

	mu     sync.RWMutex
	conn   *websocket.Conn
	latest map[string]types.MarketSnapshot

	cancel context.CancelFunc
}

var _ interfaces.MarketFeed = (*BinanceFeed)(nil)

func NewBinanceFeed(wsURL string, symbols []string) *BinanceFeed {
	if wsURL == "" {
		wsURL = defaultWsURL
	}
	return &BinanceFeed{
		wsURL:        wsURL,
		symbols:      symbols,
		maxRetries:   5,
		retryBackoff: 3 * time.Second,
		latest:       make(map[string]types.MarketSnapshot),
	}
}

func (f *BinanceFeed) Start(ctx context.Context) error {
	if len(f.symbols) == 0 {
		return fmt.Errorf("no symbols to subscribe")
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	go f.runWS(ctx)
	return nil
}

func (f *BinanceFeed) runWS(ctx context.Context) {
	retries := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := f.connect(ctx); err != nil {
			retries++
			if retries >= f.maxRetries {
				logger.ErrorWithErr(ctx, "Market stream gave up after max retries", err,
					"retries", retries)
				return
			}
			backoff := time.Duration(retries) * f.retryBackoff
			logger.Warn(ctx, "Market stream connect failed, retrying",
				"error", err.Error(),
				"retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}

		retries = 0
		if err := f.readLoop(ctx); err != nil && ctx.Err() == nil {
			logger.Warn(ctx, "Market stream read failed, reconnecting", "error", err.Error())
		}
		f.closeConn()
	}
}

func (f *BinanceFeed) connect(ctx context.Context) error {
	logger.Info(ctx, "Connecting to market stream", "url", f.wsURL)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial market stream: %w", err)
	}

	params := make([]string, 0, len(f.symbols))
	for _, s := range f.symbols {
		params = append(params, strings.ToLower(s)+"@ticker")
	}
	sub := map[string]any{"method": "SUBSCRIBE", "params": params, "id": 1}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	logger.Info(ctx, "Market stream connected", "streams", len(params))
	return nil
}

func (f *BinanceFeed) readLoop(ctx context.Context) error {
	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("no connection")
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		f.handleMessage(ctx, msg)
	}
}

type tickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Last      string `json:"c"`
	Bid       string `json:"b"`
	Ask       string `json:"a"`
	Volume    string `json:"v"`
}

func (f *BinanceFeed) handleMessage(ctx context.Context, msg []byte) {
	var ev tickerEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		logger.Debug(ctx, "Skipping unparseable stream message", "error", err.Error())
		return
	}
	// Subscribe acks and other control frames have no event type.
	if ev.EventType != "24hrTicker" {
		return
	}

	price, err := strconv.ParseFloat(ev.Last, 64)
	if err != nil || price <= 0 {
		return
	}
	bid, _ := strconv.ParseFloat(ev.Bid, 64)
	ask, _ := strconv.ParseFloat(ev.Ask, 64)
	volume, _ := strconv.ParseFloat(ev.Volume, 64)

	snap := types.MarketSnapshot{
		Symbol: ev.Symbol,
		Price:  price,
		Volume: volume,
		Bid:    bid,
		Ask:    ask,
		Ts:     time.UnixMilli(ev.EventTime),
	}

	f.mu.Lock()
	f.latest[ev.Symbol] = snap
	f.mu.Unlock()
}

// Snapshot returns the latest tick for symbol. It fails until the first
// tick arrives and again if the stream has gone quiet.
func (f *BinanceFeed) Snapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	f.mu.RLock()
	snap, ok := f.latest[symbol]
	f.mu.RUnlock()

	if !ok {
		return types.MarketSnapshot{}, fmt.Errorf("no market data for %s yet", symbol)
	}
	if time.Since(snap.Ts) > staleAfter {
		return types.MarketSnapshot{}, fmt.Errorf("market data for %s is stale (last tick %s)",
			symbol, snap.Ts.Format(time.RFC3339))
	}
	return snap, nil
}

func (f *BinanceFeed) Close() error {
	if f.cancel != nil {
		f.cancel()
	}
	f.closeConn()
	return nil
}

func (f *BinanceFeed) closeConn() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}
