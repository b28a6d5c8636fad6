// Package abf reads Axon Binary Format recordings (ABF1 and ABF2).
//
// [Open] and [Decode] return a [Recording] holding the sample rate, sweep
// count and per-sweep time and amplitude arrays of one ADC channel. Samples
// stored as int16 are scaled to physical units with the gains recorded in the
// header; float32 data is used as is.
//
// The two header generations name the sample rate differently. [SampleRate]
// is a capability-checked accessor over both:
//
//	hz, err := abf.SampleRate(header)
package abf
