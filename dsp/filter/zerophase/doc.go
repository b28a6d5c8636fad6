// Package zerophase applies Butterworth filters forward and backward so the
// output has no net phase shift and the same length as the input.
//
// Designs are made from the normalized cutoff wn = fc/(fs/2), which lies in
// (0, 1). [NormalizedCutoff] performs that normalization and reports cutoffs
// at or above Nyquist as a [*ConfigError].
//
// Typical use:
//
//	y, err := zerophase.Lowpass(x, 20000, 1000, 4)
package zerophase
