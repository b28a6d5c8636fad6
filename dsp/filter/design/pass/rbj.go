package pass

import (
	"math"

	"github.com/cwbudde/abfplot/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// LowpassRBJ designs a second-order low-pass section at freq (Hz) with
// quality factor q, following the RBJ audio EQ cookbook. The cookbook form is
// the bilinear transform of 1/(s^2 + s/q + 1) prewarped at freq.
//
// Invalid frequencies yield zero coefficients. q <= 0 falls back to 1/sqrt(2).
func LowpassRBJ(freq, q, sampleRate float64) biquad.Coefficients {
	if !validCutoff(freq, sampleRate) {
		return biquad.Coefficients{}
	}

	cw, alpha := rbjTerms(freq, q, sampleRate)

	b1 := 1 - cw
	return normalize(b1/2, b1, b1/2, 1+alpha, -2*cw, 1-alpha)
}

// HighpassRBJ designs a second-order high-pass section at freq (Hz) with
// quality factor q.
func HighpassRBJ(freq, q, sampleRate float64) biquad.Coefficients {
	if !validCutoff(freq, sampleRate) {
		return biquad.Coefficients{}
	}

	cw, alpha := rbjTerms(freq, q, sampleRate)

	b1 := 1 + cw
	return normalize(b1/2, -b1, b1/2, 1+alpha, -2*cw, 1-alpha)
}

func rbjTerms(freq, q, sampleRate float64) (cw, alpha float64) {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		q = defaultQ
	}

	w0 := 2 * math.Pi * freq / sampleRate
	return math.Cos(w0), math.Sin(w0) / (2 * q)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
