package biquad

// Chain is an ordered cascade of biquad sections processed in series.
// Butterworth designs of order n use (n+1)/2 sections.
type Chain struct {
	sections []Section
}

// NewChain creates a cascade with one Section per Coefficients value.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}
	return c
}

// ProcessBlock filters buf in place through the full cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// PrimeSteadyState sets every section to the state it would hold after the
// constant input u had been applied indefinitely. Each section is primed
// with the steady-state output of the one before it.
func (c *Chain) PrimeSteadyState(u float64) {
	for i := range c.sections {
		s := &c.sections[i]
		s.SetState(s.SteadyState(u))
		u *= s.DCGain()
	}
}
