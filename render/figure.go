package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
)

// Default figure geometry.
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 6 * vg.Inch
	DefaultDPI    = 300
)

// TimeLabel is the x-axis label of every sweep figure.
const TimeLabel = "Time (s)"

// pdfEpoch is stamped into every PDF as creation and modification date so
// re-rendering the same input yields identical bytes.
var pdfEpoch = time.Unix(0, 0).UTC()

func init() {
	fpdf.SetDefaultCreationDate(pdfEpoch)
	fpdf.SetDefaultModificationDate(pdfEpoch)
	fpdf.SetDefaultCatalogSort(true)
}

var (
	// ErrClosed is returned by operations on a closed Figure.
	ErrClosed = errors.New("render: figure is closed")
	// ErrLengthMismatch is returned when a sweep and the time axis differ in
	// length.
	ErrLengthMismatch = errors.New("render: sweep length does not match time axis")
)

const traceWidth = 0.8

var (
	markerDashes = []vg.Length{vg.Points(6), vg.Points(4)}

	baselineStartColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	baselineEndColor   = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	measureColor       = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

// Markers are the three annotation times of a figure, in seconds. They are
// drawn as given, even when they fall outside the sweep time range.
type Markers struct {
	BaselineStart float64
	BaselineEnd   float64
	Measure       float64
}

// Outputs lists the files written by Save.
type Outputs struct {
	PNG string
	PDF string
}

// Option configures a Figure.
type Option func(*Figure)

// WithDPI sets the raster resolution of the PNG output.
func WithDPI(dpi int) Option {
	return func(f *Figure) {
		if dpi > 0 {
			f.dpi = dpi
		}
	}
}

// Figure is one sweep overlay plot.
type Figure struct {
	plot *plot.Plot

	width, height vg.Length
	dpi           int

	sweeps     int
	tMin, tMax float64
	markers    *Markers
}

// NewFigure returns an empty figure with the given title and axis labels.
func NewFigure(title, xLabel, yLabel string, opts ...Option) *Figure {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	f := &Figure{
		plot:   p,
		width:  DefaultWidth,
		height: DefaultHeight,
		dpi:    DefaultDPI,
		tMin:   math.Inf(1),
		tMax:   math.Inf(-1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Title returns the figure title for a recording file name.
func Title(fileName string) string {
	return "ABF sweeps: " + fileName
}

// CurrentLabel returns the y-axis label for the given units, falling back to
// arbitrary units when none are known.
func CurrentLabel(units string) string {
	if units == "" {
		units = "A.U."
	}
	return fmt.Sprintf("Current (%s)", units)
}

// AddSweeps overlays each sweep as a thin trace over the shared time axis t.
func (f *Figure) AddSweeps(t []float64, sweeps [][]float64) error {
	if f.plot == nil {
		return ErrClosed
	}

	for i, y := range sweeps {
		if len(y) != len(t) {
			return fmt.Errorf("%w: sweep %d has %d samples, time axis %d", ErrLengthMismatch, i, len(y), len(t))
		}
	}

	for _, y := range sweeps {
		xys := make(plotter.XYs, len(t))
		for j := range t {
			xys[j].X = t[j]
			xys[j].Y = y[j]
		}

		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("render: sweep %d: %w", f.sweeps, err)
		}
		l.LineStyle.Width = vg.Points(traceWidth)
		l.LineStyle.Color = plotutil.Color(f.sweeps)
		f.plot.Add(l)
		f.sweeps++
	}

	if len(t) > 0 && len(sweeps) > 0 {
		f.tMin = math.Min(f.tMin, t[0])
		f.tMax = math.Max(f.tMax, t[len(t)-1])
	}
	return nil
}

// AddMarkers sets the marker times. The dashed lines are laid out when the
// figure is saved so they span the final y range.
func (f *Figure) AddMarkers(m Markers) error {
	if f.plot == nil {
		return ErrClosed
	}
	f.markers = &m
	return nil
}

// Sweeps returns the number of traces added so far.
func (f *Figure) Sweeps() int {
	return f.sweeps
}

// Save writes {stem}.filtered.png and {stem}.filtered.pdf into outdir,
// creating the directory if needed and replacing existing files.
func (f *Figure) Save(outdir, stem string) (Outputs, error) {
	if f.plot == nil {
		return Outputs{}, ErrClosed
	}
	if err := f.layout(); err != nil {
		return Outputs{}, err
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("render: create output directory: %w", err)
	}

	out := Outputs{
		PNG: filepath.Join(outdir, stem+".filtered.png"),
		PDF: filepath.Join(outdir, stem+".filtered.pdf"),
	}

	png := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(f.dpi))
	f.plot.Draw(draw.New(png))
	if err := writeFile(out.PNG, vgimg.PngCanvas{Canvas: png}); err != nil {
		return Outputs{}, err
	}

	pdf := vgpdf.New(f.width, f.height)
	f.plot.Draw(draw.New(pdf))
	if err := writeFile(out.PDF, pdf); err != nil {
		return Outputs{}, err
	}

	return out, nil
}

// Close releases the figure. It is safe to call more than once.
func (f *Figure) Close() error {
	f.plot = nil
	f.markers = nil
	return nil
}

// layout adds the marker lines once and pins the x axis to the sweep range.
func (f *Figure) layout() error {
	if f.markers != nil {
		yMin, yMax := f.plot.Y.Min, f.plot.Y.Max
		switch {
		case math.IsInf(yMin, 0) || math.IsInf(yMax, 0):
			yMin, yMax = 0, 1
		case !(yMax > yMin):
			yMin, yMax = yMin-1, yMin+1
		}

		m := *f.markers
		for _, mk := range []struct {
			label string
			at    float64
			color color.Color
		}{
			{fmt.Sprintf("baseline start (%.4fs)", m.BaselineStart), m.BaselineStart, baselineStartColor},
			{fmt.Sprintf("baseline end (%.4fs)", m.BaselineEnd), m.BaselineEnd, baselineEndColor},
			{fmt.Sprintf("measure (%.4fs)", m.Measure), m.Measure, measureColor},
		} {
			l, err := plotter.NewLine(plotter.XYs{{X: mk.at, Y: yMin}, {X: mk.at, Y: yMax}})
			if err != nil {
				return fmt.Errorf("render: marker %q: %w", mk.label, err)
			}
			l.LineStyle.Color = mk.color
			l.LineStyle.Width = vg.Points(1)
			l.LineStyle.Dashes = markerDashes
			f.plot.Add(l)
			f.plot.Legend.Add(mk.label, l)
		}
		f.markers = nil
	}

	if f.tMax > f.tMin {
		f.plot.X.Min = f.tMin
		f.plot.X.Max = f.tMax
	}
	return nil
}

func writeFile(path string, w io.WriterTo) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, err := w.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("render: write %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("render: close %s: %w", filepath.Base(path), err)
	}
	return nil
}
