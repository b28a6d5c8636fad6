package spectrum

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Power returns |X[k]|^2 for each complex spectrum bin.
//
// Scratch buffers are pooled internally, so in steady state this allocates
// only the output slice.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	split(in, re, im)
	vecmath.Power(out, re, im)
	putScratch(buf)
	return out
}

func split(in []complex128, re, im []float64) {
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
}

// OneSided folds the power of a full-length real-input FFT into bins
// 0..n/2, doubling every bin that has a mirrored partner.
func OneSided(power []float64) []float64 {
	n := len(power)
	if n == 0 {
		return nil
	}

	half := n/2 + 1
	out := make([]float64, half)
	copy(out, power[:half])
	for k := 1; k < half; k++ {
		if n%2 == 0 && k == n/2 {
			continue
		}
		out[k] *= 2
	}
	return out
}

// BinFrequency returns the centre frequency in Hz of bin k of an fftSize-point
// transform.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(fftSize)
}

// BandPower sums one-sided power over the bins whose centre frequency lies in
// [loHz, hiHz].
func BandPower(oneSided []float64, fftSize int, sampleRate, loHz, hiHz float64) (float64, error) {
	if fftSize <= 0 || sampleRate <= 0 {
		return 0, fmt.Errorf("band power requires fftSize and sampleRate > 0: %d, %f", fftSize, sampleRate)
	}
	if loHz > hiHz {
		return 0, fmt.Errorf("band power range is inverted: %f > %f", loHz, hiHz)
	}

	sum := 0.0
	for k, p := range oneSided {
		f := BinFrequency(k, fftSize, sampleRate)
		if f >= loHz && f <= hiHz {
			sum += p
		}
	}
	return sum, nil
}
