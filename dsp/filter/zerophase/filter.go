package zerophase

import "slices"

// Filter applies d forward and then backward over x and returns a new slice
// of the same length. x is not modified.
//
// Both ends are extended by an odd reflection of padLen samples (clipped to
// len(x)-1) and each pass starts from the steady state for its first sample,
// which keeps edge transients small.
func Filter(x []float64, d Design) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	edge := min(d.padLen(), n-1)
	ext := oddExtend(x, edge)

	chain := d.Chain()
	chain.PrimeSteadyState(ext[0])
	chain.ProcessBlock(ext)

	slices.Reverse(ext)
	chain.PrimeSteadyState(ext[0])
	chain.ProcessBlock(ext)
	slices.Reverse(ext)

	out := make([]float64, n)
	copy(out, ext[edge:edge+n])
	return out
}

// oddExtend returns x with edge samples of point-symmetric reflection about
// each endpoint prepended and appended.
func oddExtend(x []float64, edge int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*edge)

	first, last := x[0], x[n-1]
	for i := range edge {
		ext[i] = 2*first - x[edge-i]
		ext[edge+n+i] = 2*last - x[n-2-i]
	}
	copy(ext[edge:], x)

	return ext
}

// Lowpass filters x with an order-n zero-phase Butterworth low-pass.
// order <= 0 selects DefaultOrder. Cutoffs at or above sampleRate/2 fail with
// a *ConfigError.
func Lowpass(x []float64, sampleRate, cutoffHz float64, order int) ([]float64, error) {
	wn, err := NormalizedCutoff(cutoffHz, sampleRate)
	if err != nil {
		return nil, err
	}

	d, err := DesignLowpass(wn, order)
	if err != nil {
		return nil, err
	}

	return Filter(x, d), nil
}

// Highpass filters x with an order-n zero-phase Butterworth high-pass.
func Highpass(x []float64, sampleRate, cutoffHz float64, order int) ([]float64, error) {
	wn, err := NormalizedCutoff(cutoffHz, sampleRate)
	if err != nil {
		return nil, err
	}

	d, err := DesignHighpass(wn, order)
	if err != nil {
		return nil, err
	}

	return Filter(x, d), nil
}
