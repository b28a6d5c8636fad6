// Package biquad provides the second-order IIR runtime used by the zero-phase
// filters.
//
// A [Section] runs Direct Form II Transposed processing for one set of
// [Coefficients]. Higher-order designs are cascaded through a [Chain].
// Coefficient design (Butterworth) lives in dsp/filter/design/pass.
package biquad
