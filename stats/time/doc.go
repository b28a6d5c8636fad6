// Package time provides time-domain statistics of sampled signals and the
// baseline-referenced measurements taken from a sweep.
package time
