package ta

import (
	"math"
	"testing"
)

func TestSMAInsufficientData(t *testing.T) {
	if v := SMA([]float64{1, 2}, 3); !math.IsNaN(v) {
		t.Errorf("expected NaN for short series, got %v", v)
	}
	if v := SMA(nil, 1); !math.IsNaN(v) {
		t.Errorf("expected NaN for empty series, got %v", v)
	}
}

func TestSMAWindow(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	if got := SMA(vals, 3); got != 5 {
		t.Errorf("SMA over last 3 = %v, want 5", got)
	}
}

func TestStdDevConstantSeries(t *testing.T) {
	vals := []float64{4, 4, 4, 4}
	if got := StdDev(vals, 4); got != 0 {
		t.Errorf("stddev of constant series = %v, want 0", got)
	}
}

func TestBollingerBands(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mid, up, low := Bollinger(vals, 8, 2.0)
	if mid != 5 {
		t.Errorf("mid = %v, want 5", mid)
	}
	if up <= mid || low >= mid {
		t.Errorf("bands not around mid: up=%v low=%v", up, low)
	}
	if math.Abs((up-mid)-(mid-low)) > 1e-9 {
		t.Errorf("bands not symmetric: up=%v mid=%v low=%v", up, mid, low)
	}
}
