// Package bandpower measures how a signal's power splits around a cutoff
// frequency, used to check what a low-pass filter removed.
package bandpower

import (
	"errors"
	"fmt"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/abfplot/dsp/spectrum"
	"github.com/cwbudde/abfplot/dsp/window"
	timestats "github.com/cwbudde/abfplot/stats/time"
)

var (
	// ErrEmptySignal is returned for signals with fewer than two samples.
	ErrEmptySignal = errors.New("bandpower: signal too short")
	// ErrNoPower is returned when the windowed signal carries no power.
	ErrNoPower = errors.New("bandpower: signal has no power")
)

// Config holds band-power analysis parameters.
type Config struct {
	SampleRate float64
	CutoffHz   float64
	// FFTSize defaults to the next power of two >= the signal length.
	FFTSize int
	// WindowType is the taper applied before the transform; the zero value
	// is Hann.
	WindowType window.Type
	// KeepDC leaves the signal mean in place; by default it is removed so a
	// holding current does not dominate the total.
	KeepDC bool
}

// Result holds one band-power measurement.
type Result struct {
	Window     string
	FFTSize    int
	TotalPower float64
	AbovePower float64
	// AboveFraction is AbovePower / TotalPower.
	AboveFraction float64
}

// Comparison pairs the measurements of a signal before and after filtering.
type Comparison struct {
	Raw      Result
	Filtered Result
}

// Attenuation returns the ratio of the filtered to the raw above-cutoff
// fraction; values below 1 mean the filter removed high-frequency power.
func (c Comparison) Attenuation() float64 {
	if c.Raw.AboveFraction == 0 {
		return 0
	}
	return c.Filtered.AboveFraction / c.Raw.AboveFraction
}

// Calculator performs band-power analysis with a fixed configuration.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a new band-power calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// AnalyzeSignal is a one-shot analysis of a time-domain signal.
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	return NewCalculator(cfg).AnalyzeSignal(signal)
}

// Compare analyzes raw and filtered versions of the same signal.
func Compare(raw, filtered []float64, cfg Config) (Comparison, error) {
	c := NewCalculator(cfg)

	r, err := c.AnalyzeSignal(raw)
	if err != nil {
		return Comparison{}, fmt.Errorf("raw: %w", err)
	}
	f, err := c.AnalyzeSignal(filtered)
	if err != nil {
		return Comparison{}, fmt.Errorf("filtered: %w", err)
	}
	return Comparison{Raw: r, Filtered: f}, nil
}

// AnalyzeSignal windows the signal, transforms it and sums the one-sided
// power above the configured cutoff.
func (c *Calculator) AnalyzeSignal(signal []float64) (Result, error) {
	cfg := c.cfg
	if len(signal) < 2 {
		return Result{}, fmt.Errorf("%w: %d samples", ErrEmptySignal, len(signal))
	}
	if !(cfg.SampleRate > 0) || !(cfg.CutoffHz > 0) {
		return Result{}, fmt.Errorf("bandpower: sample rate and cutoff must be > 0: %v, %v", cfg.SampleRate, cfg.CutoffHz)
	}

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}
	if fftSize < len(signal) {
		return Result{}, fmt.Errorf("bandpower: FFT size %d shorter than signal (%d)", fftSize, len(signal))
	}

	mean := 0.0
	if !cfg.KeepDC {
		mean = timestats.DC(signal)
	}

	frame := make([]float64, len(signal))
	for i, x := range signal {
		frame[i] = x - mean
	}
	window.Apply(cfg.WindowType, frame)

	inData := make([]complex128, fftSize)
	for i, x := range frame {
		inData[i] = complex(x, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("bandpower: FFT plan: %w", err)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return Result{}, fmt.Errorf("bandpower: FFT: %w", err)
	}

	power := spectrum.OneSided(spectrum.Power(out))

	total, err := spectrum.BandPower(power, fftSize, cfg.SampleRate, 0, cfg.SampleRate/2)
	if err != nil {
		return Result{}, err
	}
	if total == 0 {
		return Result{FFTSize: fftSize}, ErrNoPower
	}

	above, err := spectrum.BandPower(power, fftSize, cfg.SampleRate, cfg.CutoffHz, cfg.SampleRate/2)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Window:        window.Info(cfg.WindowType).Name,
		FFTSize:       fftSize,
		TotalPower:    total,
		AbovePower:    above,
		AboveFraction: above / total,
	}, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
