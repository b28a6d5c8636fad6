package zerophase

import (
	"errors"
	"fmt"
)

var (
	errNonPositiveRate   = errors.New("zerophase: sample rate must be > 0")
	errNonPositiveCutoff = errors.New("zerophase: cutoff must be > 0")
	errNormalizedRange   = errors.New("zerophase: normalized cutoff must lie in (0, 1)")
)

// ConfigError reports a cutoff at or above the Nyquist frequency of the
// signal being filtered.
type ConfigError struct {
	CutoffHz  float64
	NyquistHz float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cutoff (%.1f Hz) must be less than Nyquist (%.1f Hz)", e.CutoffHz, e.NyquistHz)
}
