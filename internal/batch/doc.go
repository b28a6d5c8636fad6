// Package batch resolves a numbered range of recordings and runs the
// load, filter, measure and render steps on each file in turn.
package batch
