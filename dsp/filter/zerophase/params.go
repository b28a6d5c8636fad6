package zerophase

// Params selects the zero-phase filtering applied to a sweep: a Butterworth
// low-pass at CutoffHz, preceded by a high-pass at HighpassHz when that is
// positive.
type Params struct {
	CutoffHz   float64
	Order      int
	HighpassHz float64
}

// Designs returns the designs for a signal sampled at sampleRate: the
// high-pass (nil when disabled) and the low-pass. It fails with a
// *ConfigError when a cutoff is at or above Nyquist.
func (p Params) Designs(sampleRate float64) (hp *Design, lp Design, err error) {
	wn, err := NormalizedCutoff(p.CutoffHz, sampleRate)
	if err != nil {
		return nil, Design{}, err
	}
	if lp, err = DesignLowpass(wn, p.Order); err != nil {
		return nil, Design{}, err
	}

	if p.HighpassHz > 0 {
		wn, err := NormalizedCutoff(p.HighpassHz, sampleRate)
		if err != nil {
			return nil, Design{}, err
		}
		d, err := DesignHighpass(wn, p.Order)
		if err != nil {
			return nil, Design{}, err
		}
		hp = &d
	}

	return hp, lp, nil
}
