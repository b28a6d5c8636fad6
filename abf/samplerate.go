package abf

import (
	"fmt"
	"math"
)

type sampleRateHzer interface {
	SampleRateHz() float64
}

type dataRater interface {
	DataRate() float64
}

// SampleRate returns the sample rate in Hz of an ABF header. It prefers
// SampleRateHz (ABF2 headers) and falls back to DataRate (ABF1 headers).
// Values exposing neither fail with ErrUnsupportedRecording.
func SampleRate(h any) (float64, error) {
	var rate float64
	switch v := h.(type) {
	case sampleRateHzer:
		rate = v.SampleRateHz()
	case dataRater:
		rate = v.DataRate()
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedRecording, h)
	}

	if !(rate > 0) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: sample rate %v", ErrInvalidHeader, rate)
	}
	return rate, nil
}
