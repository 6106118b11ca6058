package marketdata

import (
	"context"
	"testing"
)

func TestReplaySameSeedSameWalk(t *testing.T) {
	ctx := context.Background()
	a := NewReplayFeed(42)
	b := NewReplayFeed(42)

	for i := 0; i < 20; i++ {
		sa, err := a.Snapshot(ctx, "BTCUSDT")
		if err != nil {
			t.Fatalf("snapshot a: %v", err)
		}
		sb, err := b.Snapshot(ctx, "BTCUSDT")
		if err != nil {
			t.Fatalf("snapshot b: %v", err)
		}
		if sa.Price != sb.Price {
			t.Fatalf("tick %d: prices diverged, %f vs %f", i, sa.Price, sb.Price)
		}
	}
}

func TestReplayDifferentSeedsDiverge(t *testing.T) {
	ctx := context.Background()
	a := NewReplayFeed(1)
	b := NewReplayFeed(2)

	same := true
	for i := 0; i < 10; i++ {
		sa, _ := a.Snapshot(ctx, "BTCUSDT")
		sb, _ := b.Snapshot(ctx, "BTCUSDT")
		if sa.Price != sb.Price {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical walks")
	}
}

func TestReplayUnknownSymbolStartsNearDefaultBase(t *testing.T) {
	f := NewReplayFeed(3)
	snap, err := f.Snapshot(context.Background(), "DOGEUSDT")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Price < 99 || snap.Price > 101 {
		t.Fatalf("expected first tick near 100, got %f", snap.Price)
	}
}

func TestReplayEmptySymbolErrors(t *testing.T) {
	f := NewReplayFeed(3)
	if _, err := f.Snapshot(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

func TestReplayBidAskStraddlePrice(t *testing.T) {
	f := NewReplayFeed(9)
	snap, err := f.Snapshot(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !(snap.Bid < snap.Price && snap.Price < snap.Ask) {
		t.Fatalf("quote does not straddle price: bid=%f price=%f ask=%f",
			snap.Bid, snap.Price, snap.Ask)
	}
}
