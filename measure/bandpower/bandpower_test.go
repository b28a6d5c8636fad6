package bandpower

import (
	"errors"
	"testing"

	"github.com/cwbudde/abfplot/dsp/filter/zerophase"
	"github.com/cwbudde/abfplot/dsp/window"
	"github.com/cwbudde/abfplot/internal/testutil"
)

const testRate = 10000.0

func TestAnalyzeSignal_LowToneStaysBelowCutoff(t *testing.T) {
	x := testutil.Sine(100, testRate, 1, 0, 4096)

	res, err := AnalyzeSignal(x, Config{SampleRate: testRate, CutoffHz: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if res.FFTSize != 4096 {
		t.Fatalf("FFTSize=%d", res.FFTSize)
	}
	if res.AboveFraction > 1e-4 {
		t.Fatalf("AboveFraction=%g, want ~0", res.AboveFraction)
	}
}

func TestAnalyzeSignal_HighToneAboveCutoff(t *testing.T) {
	x := testutil.Sine(3000, testRate, 1, 0, 3000)

	res, err := AnalyzeSignal(x, Config{SampleRate: testRate, CutoffHz: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if res.FFTSize != 4096 {
		t.Fatalf("FFTSize=%d, want next power of two", res.FFTSize)
	}
	if res.AboveFraction < 0.999 {
		t.Fatalf("AboveFraction=%g, want ~1", res.AboveFraction)
	}
}

func TestAnalyzeSignal_WhiteNoiseSplitsByBandwidth(t *testing.T) {
	x := testutil.DeterministicNoise(7, 1, 8192)

	res, err := AnalyzeSignal(x, Config{SampleRate: testRate, CutoffHz: 1000})
	if err != nil {
		t.Fatal(err)
	}
	// 4000 of 5000 Hz lie above the cutoff.
	if res.AboveFraction < 0.75 || res.AboveFraction > 0.85 {
		t.Fatalf("AboveFraction=%g, want ~0.8", res.AboveFraction)
	}
}

func TestAnalyzeSignal_DCRemoved(t *testing.T) {
	x := testutil.Add(testutil.Sine(3000, testRate, 0.1, 0, 2048), testutil.DC(50, 2048))

	res, err := AnalyzeSignal(x, Config{SampleRate: testRate, CutoffHz: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if res.AboveFraction < 0.99 {
		t.Fatalf("AboveFraction=%g, offset should be removed", res.AboveFraction)
	}

	kept, err := AnalyzeSignal(x, Config{SampleRate: testRate, CutoffHz: 1000, KeepDC: true})
	if err != nil {
		t.Fatal(err)
	}
	if kept.AboveFraction > 0.1 {
		t.Fatalf("AboveFraction=%g with DC kept, want dominated by DC", kept.AboveFraction)
	}
}

func TestCompare_FilterReducesAbovePower(t *testing.T) {
	raw := testutil.Add(testutil.Sine(80, testRate, 1, 0, 5000), testutil.DeterministicNoise(11, 0.5, 5000))
	filtered, err := zerophase.Lowpass(raw, testRate, 1000, 4)
	if err != nil {
		t.Fatal(err)
	}

	cmp, err := Compare(raw, filtered, Config{SampleRate: testRate, CutoffHz: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Filtered.AboveFraction >= cmp.Raw.AboveFraction {
		t.Fatalf("filtered %g >= raw %g", cmp.Filtered.AboveFraction, cmp.Raw.AboveFraction)
	}
	if a := cmp.Attenuation(); a <= 0 || a >= 0.1 {
		t.Fatalf("Attenuation=%g", a)
	}
}

func TestAnalyzeSignal_Errors(t *testing.T) {
	if _, err := AnalyzeSignal([]float64{1}, Config{SampleRate: testRate, CutoffHz: 1000}); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("expected ErrEmptySignal, got %v", err)
	}
	if _, err := AnalyzeSignal(testutil.DC(1, 64), Config{SampleRate: testRate, CutoffHz: 1000}); !errors.Is(err, ErrNoPower) {
		t.Fatalf("expected ErrNoPower, got %v", err)
	}
	if _, err := AnalyzeSignal(testutil.DC(1, 64), Config{CutoffHz: 1000}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := AnalyzeSignal(testutil.DC(1, 64), Config{SampleRate: testRate, CutoffHz: 1000, FFTSize: 32}); err == nil {
		t.Fatal("expected error for short FFT")
	}
}

func TestAnalyzeSignal_RectangularWindowSelectable(t *testing.T) {
	// Eight whole cycles in 64 samples land exactly on bin 8.
	x := testutil.Sine(8, 64, 1, 0, 64)
	cfg := Config{SampleRate: 64, CutoffHz: 8.5}

	hann, err := AnalyzeSignal(x, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.WindowType = window.TypeRectangular
	rect, err := AnalyzeSignal(x, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if hann.Window != "Hann" || rect.Window != "Rectangular" {
		t.Fatalf("windows: %q, %q", hann.Window, rect.Window)
	}
	if rect.AboveFraction > 1e-12 {
		t.Fatalf("rectangular AboveFraction=%g, want no leakage", rect.AboveFraction)
	}
	if hann.AboveFraction < 0.01 {
		t.Fatalf("Hann AboveFraction=%g, want leakage into bin 9", hann.AboveFraction)
	}
}
