package window

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGenerateLengthAndFinite(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeRectangular} {
		t.Run(Info(typ).Name, func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}
			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}
}

func TestZeroTypeIsHann(t *testing.T) {
	var zero Type
	if zero != TypeHann || Info(zero).Name != "Hann" {
		t.Fatalf("zero Type = %d (%s), want Hann", zero, Info(zero).Name)
	}
}

func TestHannSymmetricWithZeroEndpoints(t *testing.T) {
	w := Generate(TypeHann, 9)
	if !almostEqual(w[0], 0, 1e-12) || !almostEqual(w[8], 0, 1e-12) {
		t.Fatalf("endpoints: %v %v", w[0], w[8])
	}
	if !almostEqual(w[4], 1, 1e-12) {
		t.Fatalf("peak: %v", w[4])
	}
	for i := range w {
		if !almostEqual(w[i], w[len(w)-1-i], 1e-12) {
			t.Fatalf("not symmetric at %d: %v vs %v", i, w[i], w[len(w)-1-i])
		}
	}
}

func TestRectangularIsFlat(t *testing.T) {
	for i, v := range Generate(TypeRectangular, 7) {
		if v != 1 {
			t.Fatalf("coefficient[%d] = %v, want 1", i, v)
		}
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("expected nil window, got %v", w)
	}
	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 0 {
		t.Fatalf("single-point window = %v", w)
	}
}

// The tabulated ENBW and coherent gain must agree with long windows.
func TestMetadataMatchesCoefficients(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeRectangular} {
		w := Generate(typ, 8192)
		var sum, sumSq float64
		for _, c := range w {
			sum += c
			sumSq += c * c
		}
		n := float64(len(w))
		enbw := n * sumSq / (sum * sum)
		m := Info(typ)
		if !almostEqual(enbw, m.ENBW, 1e-3) {
			t.Errorf("%s: ENBW=%v, want %v", m.Name, enbw, m.ENBW)
		}
		if !almostEqual(sum/n, m.CoherentGain, 1e-3) {
			t.Errorf("%s: coherent gain=%v, want %v", m.Name, sum/n, m.CoherentGain)
		}
	}
}

func TestApplyMatchesGenerate(t *testing.T) {
	buf := []float64{2, 2, 2, 2, 2, 2, 2}
	Apply(TypeHann, buf)
	w := Generate(TypeHann, len(buf))
	for i := range buf {
		if !almostEqual(buf[i], 2*w[i], 1e-12) {
			t.Fatalf("buf[%d]=%v, want %v", i, buf[i], 2*w[i])
		}
	}

	Apply(TypeHann, nil)
}
