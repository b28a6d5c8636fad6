// Package render draws filtered sweeps with their baseline and measurement
// markers and saves the figure as a PNG raster and a PDF vector file.
//
// A Figure is an explicit handle; nothing is kept in package state, so
// callers own the lifetime:
//
//	fig := render.NewFigure(render.Title(name), render.TimeLabel, render.CurrentLabel(units))
//	defer fig.Close()
package render
