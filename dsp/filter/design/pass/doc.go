// Package pass designs Butterworth low-pass and high-pass filters as
// cascades of biquad sections.
//
// Designs take the cutoff in Hz together with the sample rate. Passing a
// normalized cutoff wn = fc/(fs/2) with sampleRate = 2 yields the same
// sections as the equivalent Hz design, which is how the zero-phase filters
// expose the normalization.
package pass
