package biquad

import "sync"

// Coefficients holds the transfer function of one second-order section.
// a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// DCGain returns H(z=1), the section gain for a constant input.
// It returns 0 when the denominator vanishes at DC.
func (c Coefficients) DCGain() float64 {
	den := 1 + c.A1 + c.A2
	if den == 0 {
		return 0
	}
	return (c.B0 + c.B1 + c.B2) / den
}

// Section is a single biquad filter with coefficients and delay-line state.
type Section struct {
	Coefficients

	d0, d1 float64
}

var (
	blockKernel     kernelFn
	blockKernelOnce sync.Once
)

// ProcessBlock filters buf in place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	blockKernelOnce.Do(selectKernel)
	s.d0, s.d1 = blockKernel(s.Coefficients, s.d0, s.d1, buf)
}

// SetState loads the delay-line state [d0, d1].
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}

// SteadyState returns the delay-line state the section settles into after a
// constant input u has been applied for infinitely long. Priming a section
// with it removes the start-up transient for signals beginning near u.
func (c Coefficients) SteadyState(u float64) [2]float64 {
	y := c.DCGain() * u
	d1 := c.B2*u - c.A2*y
	return [2]float64{y - c.B0*u, d1}
}
