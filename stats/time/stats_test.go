package time

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func generateDC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// generateSquare creates a +val/-val alternating square wave.
func generateSquare(val float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		if i%2 == 0 {
			out[i] = val
		} else {
			out[i] = -val
		}
	}
	return out
}

func timeAxis(rate float64, n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / rate
	}
	return t
}

func TestCalculate_DCSignal(t *testing.T) {
	s := Calculate(generateDC(1.5, 1000))

	if s.Length != 1000 {
		t.Errorf("Length: got %d, want 1000", s.Length)
	}
	if !almostEqual(s.DC, 1.5, tolerance) {
		t.Errorf("DC: got %g, want 1.5", s.DC)
	}
	if !almostEqual(s.RMS, 1.5, tolerance) {
		t.Errorf("RMS: got %g, want 1.5", s.RMS)
	}
	if !almostEqual(s.StdDev, 0, tolerance) {
		t.Errorf("StdDev: got %g, want 0", s.StdDev)
	}
	if !almostEqual(s.Range, 0, tolerance) {
		t.Errorf("Range: got %g, want 0", s.Range)
	}
}

func TestCalculate_Square(t *testing.T) {
	s := Calculate(generateSquare(2, 100))

	if !almostEqual(s.DC, 0, tolerance) {
		t.Errorf("DC: got %g, want 0", s.DC)
	}
	if !almostEqual(s.RMS, 2, tolerance) {
		t.Errorf("RMS: got %g, want 2", s.RMS)
	}
	if !almostEqual(s.Variance, 4, tolerance) {
		t.Errorf("Variance: got %g, want 4", s.Variance)
	}
	if s.Max != 2 || s.MaxPos != 0 || s.Min != -2 || s.MinPos != 1 {
		t.Errorf("extrema: got max %g@%d min %g@%d", s.Max, s.MaxPos, s.Min, s.MinPos)
	}
	if !almostEqual(s.Peak, 2, tolerance) || !almostEqual(s.Range, 4, tolerance) {
		t.Errorf("peak/range: got %g/%g", s.Peak, s.Range)
	}
}

func TestCalculate_Empty(t *testing.T) {
	if s := Calculate(nil); s != (Stats{}) {
		t.Errorf("got %+v, want zero Stats", s)
	}
	if DC(nil) != 0 {
		t.Error("DC should return 0 for empty input")
	}
}

func TestCalculate_MatchesDC(t *testing.T) {
	signal := []float64{0.3, -1.2, 4.5, 2.2, -0.7, 0.01}
	s := Calculate(signal)

	if !almostEqual(s.DC, DC(signal), tolerance) {
		t.Errorf("DC: %g vs %g", s.DC, DC(signal))
	}
	if !almostEqual(s.Peak, 4.5, tolerance) || s.MaxPos != 2 || s.MinPos != 1 {
		t.Errorf("Peak/MaxPos/MinPos: %g/%d/%d", s.Peak, s.MaxPos, s.MinPos)
	}
	// RMS^2 = mean^2 + variance
	if !almostEqual(s.RMS*s.RMS, s.DC*s.DC+s.Variance, 1e-9) {
		t.Errorf("RMS^2 %g != DC^2 + Var %g", s.RMS*s.RMS, s.DC*s.DC+s.Variance)
	}
}

func TestWindow(t *testing.T) {
	tm := timeAxis(1000, 100)
	y := make([]float64, 100)
	for i := range y {
		y[i] = float64(i)
	}

	w, err := Window(tm, y, 0.010, 0.020)
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != 11 || w[0] != 10 || w[10] != 20 {
		t.Fatalf("got %v", w)
	}

	swapped, err := Window(tm, y, 0.020, 0.010)
	if err != nil || len(swapped) != 11 {
		t.Fatalf("swapped bounds: %v %v", swapped, err)
	}

	if _, err := Window(tm, y, 0.5, 0.6); !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected ErrEmptyWindow, got %v", err)
	}
	if _, err := Window(tm, y[:5], 0, 1); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestValueAt(t *testing.T) {
	tm := []float64{0, 1, 2, 3}
	y := []float64{0, 10, 20, 40}

	cases := []struct {
		at, want float64
	}{
		{0, 0},
		{1, 10},
		{1.5, 15},
		{2.25, 25},
		{3, 40},
	}
	for _, c := range cases {
		got, err := ValueAt(tm, y, c.at)
		if err != nil {
			t.Fatalf("at %g: %v", c.at, err)
		}
		if !almostEqual(got, c.want, tolerance) {
			t.Errorf("at %g: got %g, want %g", c.at, got, c.want)
		}
	}

	for _, at := range []float64{-0.1, 3.1, math.NaN()} {
		if _, err := ValueAt(tm, y, at); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("at %g: expected ErrOutOfRange, got %v", at, err)
		}
	}
}

func TestMeasure_DCSweep(t *testing.T) {
	tm := timeAxis(10000, 500)
	y := generateDC(-3.25, 500)

	m, err := Measure(tm, y, 0.005, 0.011, 0.0159)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(m.BaselineMean, -3.25, tolerance) {
		t.Errorf("BaselineMean: got %g", m.BaselineMean)
	}
	if !almostEqual(m.BaselineNoise, 0, tolerance) {
		t.Errorf("BaselineNoise: got %g", m.BaselineNoise)
	}
	if !almostEqual(m.Value, -3.25, tolerance) || !almostEqual(m.Delta, 0, tolerance) {
		t.Errorf("Value/Delta: got %g/%g", m.Value, m.Delta)
	}
	if m.BaselineSamples < 60 || m.BaselineSamples > 61 {
		t.Errorf("BaselineSamples: got %d", m.BaselineSamples)
	}
}

func TestMeasure_Step(t *testing.T) {
	tm := timeAxis(1000, 100)
	y := make([]float64, 100)
	for i := range y {
		if i >= 50 {
			y[i] = 5
		} else {
			y[i] = generateSquare(0.1, 50)[i] + 1
		}
	}

	m, err := Measure(tm, y, 0.0, 0.039, 0.080)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(m.BaselineMean, 1, tolerance) {
		t.Errorf("BaselineMean: got %g, want 1", m.BaselineMean)
	}
	if !almostEqual(m.BaselineNoise, 0.1, tolerance) {
		t.Errorf("BaselineNoise: got %g, want 0.1", m.BaselineNoise)
	}
	if !almostEqual(m.Delta, 4, tolerance) {
		t.Errorf("Delta: got %g, want 4", m.Delta)
	}

	if _, err := Measure(tm, y, 0, 0.01, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}
