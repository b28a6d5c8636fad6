// Package window generates cosine-sum window functions used to taper sweeps
// before spectral analysis.
package window
