package time

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrLengthMismatch is returned when the time and value slices differ in
	// length.
	ErrLengthMismatch = errors.New("time: time and value lengths differ")
	// ErrEmptyWindow is returned when no sample falls inside a window.
	ErrEmptyWindow = errors.New("time: no samples in window")
	// ErrOutOfRange is returned when a point lies outside the time axis.
	ErrOutOfRange = errors.New("time: outside sampled range")
)

// Window returns the sub-slice of y whose times lie in [from, to]. t must be
// ascending. The bounds may be given in either order.
func Window(t, y []float64, from, to float64) ([]float64, error) {
	if len(t) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(t), len(y))
	}
	if from > to {
		from, to = to, from
	}

	lo := sort.SearchFloat64s(t, from)
	hi := sort.Search(len(t), func(i int) bool { return t[i] > to })
	if lo >= hi {
		return nil, fmt.Errorf("%w: [%g, %g] s", ErrEmptyWindow, from, to)
	}
	return y[lo:hi], nil
}

// ValueAt returns y at time at, linearly interpolated between the two
// neighbouring samples. t must be ascending.
func ValueAt(t, y []float64, at float64) (float64, error) {
	if len(t) != len(y) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(t), len(y))
	}
	if len(t) == 0 || at < t[0] || at > t[len(t)-1] || math.IsNaN(at) {
		return 0, fmt.Errorf("%w: %g s", ErrOutOfRange, at)
	}

	i := sort.SearchFloat64s(t, at)
	if t[i] == at || i == 0 {
		return y[i], nil
	}

	t0, t1 := t[i-1], t[i]
	frac := (at - t0) / (t1 - t0)
	return y[i-1] + frac*(y[i]-y[i-1]), nil
}

// Measurement is the baseline-referenced reading of one sweep.
type Measurement struct {
	// BaselineMean is the mean over the baseline window.
	BaselineMean float64
	// BaselineNoise is the RMS deviation from BaselineMean in the window.
	BaselineNoise float64
	// BaselineSamples is the number of samples in the window.
	BaselineSamples int
	// Value is the signal at the measurement time.
	Value float64
	// Delta is Value - BaselineMean.
	Delta float64
}

// Measure computes baseline statistics over [baselineStart, baselineEnd] and
// the baseline-referenced value at the measurement time.
func Measure(t, y []float64, baselineStart, baselineEnd, at float64) (Measurement, error) {
	base, err := Window(t, y, baselineStart, baselineEnd)
	if err != nil {
		return Measurement{}, err
	}
	v, err := ValueAt(t, y, at)
	if err != nil {
		return Measurement{}, err
	}

	s := Calculate(base)
	return Measurement{
		BaselineMean:    s.DC,
		BaselineNoise:   s.StdDev,
		BaselineSamples: s.Length,
		Value:           v,
		Delta:           v - s.DC,
	}, nil
}
