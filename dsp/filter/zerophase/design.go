package zerophase

import (
	"fmt"
	"math"

	"github.com/cwbudde/abfplot/dsp/filter/biquad"
	"github.com/cwbudde/abfplot/dsp/filter/design/pass"
)

// DefaultOrder is the Butterworth order used when none is given.
const DefaultOrder = 4

// NormalizedCutoff returns cutoffHz / (sampleRate/2).
//
// It fails with a *ConfigError when cutoffHz >= sampleRate/2.
func NormalizedCutoff(cutoffHz, sampleRate float64) (float64, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: %v", errNonPositiveRate, sampleRate)
	}
	if !(cutoffHz > 0) {
		return 0, fmt.Errorf("%w: %v", errNonPositiveCutoff, cutoffHz)
	}

	nyquist := 0.5 * sampleRate
	if cutoffHz >= nyquist {
		return 0, &ConfigError{CutoffHz: cutoffHz, NyquistHz: nyquist}
	}

	return cutoffHz / nyquist, nil
}

// Design is a Butterworth filter expressed as second-order sections over the
// normalized frequency axis (Nyquist == 1).
type Design struct {
	Wn       float64
	Order    int
	Sections []biquad.Coefficients
}

// DesignLowpass designs an order-n Butterworth low-pass at normalized cutoff wn.
func DesignLowpass(wn float64, order int) (Design, error) {
	return designWith(pass.ButterworthLP, wn, order)
}

// DesignHighpass designs an order-n Butterworth high-pass at normalized cutoff wn.
func DesignHighpass(wn float64, order int) (Design, error) {
	return designWith(pass.ButterworthHP, wn, order)
}

func designWith(fn func(float64, int, float64) []biquad.Coefficients, wn float64, order int) (Design, error) {
	if !(wn > 0 && wn < 1) {
		return Design{}, fmt.Errorf("%w: %v", errNormalizedRange, wn)
	}
	if order <= 0 {
		order = DefaultOrder
	}

	// A sample rate of 2 puts Nyquist at 1, so wn is used unchanged.
	return Design{Wn: wn, Order: order, Sections: fn(wn, order, 2)}, nil
}

// TransferFunction expands the sections into numerator b and denominator a
// polynomials in z^-1, with a[0] == 1 and len(b) == len(a) == Order+1.
func (d Design) TransferFunction() (b, a []float64) {
	b = []float64{1}
	a = []float64{1}
	for _, s := range d.Sections {
		b = polyMul(b, []float64{s.B0, s.B1, s.B2})
		a = polyMul(a, []float64{1, s.A1, s.A2})
	}

	n := d.Order + 1
	if len(b) > n {
		b = b[:n]
		a = a[:n]
	}
	return b, a
}

// Chain returns a fresh cascade for the design.
func (d Design) Chain() *biquad.Chain {
	return biquad.NewChain(d.Sections)
}

// MagnitudeDB returns the forward-backward gain in dB at freqHz, twice the
// single-pass response of the cascade.
func (d Design) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 2 * d.Chain().MagnitudeDB(freqHz, sampleRate)
}

// padLen is the odd-extension length used on each side of the signal.
func (d Design) padLen() int {
	return 3 * (d.Order + 1)
}

func polyMul(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, x := range p {
		for j, y := range q {
			out[i+j] += x * y
		}
	}
	return out
}
