package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cwbudde/abfplot/abf"
	"github.com/cwbudde/abfplot/dsp/filter/zerophase"
	"github.com/cwbudde/abfplot/measure/bandpower"
	"github.com/cwbudde/abfplot/render"
	timestats "github.com/cwbudde/abfplot/stats/time"
)

var (
	// ErrPanic wraps a panic recovered while processing one file.
	ErrPanic = errors.New("batch: panic while processing file")
	// ErrNoSweeps is returned for recordings without sweep data.
	ErrNoSweeps = errors.New("batch: recording has no sweeps")
)

// Loader reads one channel of a recording.
type Loader interface {
	Load(path string, channel int) (*abf.Recording, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string, channel int) (*abf.Recording, error)

// Load calls f.
func (f LoaderFunc) Load(path string, channel int) (*abf.Recording, error) {
	return f(path, channel)
}

// ABFLoader reads recordings from ABF files.
var ABFLoader Loader = LoaderFunc(abf.Open)

// Figure is everything needed to draw and save one file's plot.
type Figure struct {
	Title   string
	XLabel  string
	YLabel  string
	Time    []float64
	Sweeps  [][]float64
	Markers render.Markers
	OutDir  string
	Stem    string
}

// Renderer draws and persists a Figure.
type Renderer interface {
	Render(fig Figure) (render.Outputs, error)
}

// FigureRenderer renders with the render package.
type FigureRenderer struct {
	Options []render.Option
}

// Render draws fig and writes its PNG and PDF files.
func (r FigureRenderer) Render(fig Figure) (render.Outputs, error) {
	f := render.NewFigure(fig.Title, fig.XLabel, fig.YLabel, r.Options...)
	defer f.Close()

	if err := f.AddSweeps(fig.Time, fig.Sweeps); err != nil {
		return render.Outputs{}, err
	}
	if err := f.AddMarkers(fig.Markers); err != nil {
		return render.Outputs{}, err
	}
	return f.Save(fig.OutDir, fig.Stem)
}

// FileResult describes one successfully processed file.
type FileResult struct {
	Path         string
	Name         string
	Version      abf.Version
	SampleRate   float64
	Channel      int
	Units        string
	SweepCount   int
	Outputs      render.Outputs
	Measurements []timestats.Measurement
	Spectral     *bandpower.Comparison
}

// Processor runs the per-file pipeline. The zero value is not usable; fill
// in Params, Markers and OutDir and use NewProcessor for the defaults.
type Processor struct {
	Params   zerophase.Params
	Markers  render.Markers
	Channel  int
	OutDir   string
	Loader   Loader
	Renderer Renderer
	Logger   zerolog.Logger
}

// NewProcessor returns a Processor reading ABF files and rendering with the
// render package.
func NewProcessor(params zerophase.Params, markers render.Markers, outDir string, logger zerolog.Logger) *Processor {
	return &Processor{
		Params:   params,
		Markers:  markers,
		OutDir:   outDir,
		Loader:   ABFLoader,
		Renderer: FigureRenderer{},
		Logger:   logger,
	}
}

// Process loads, filters, measures and renders one file. Panics are
// recovered and returned as errors wrapping ErrPanic.
func (p *Processor) Process(path string) (res FileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = FileResult{}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	logger := p.Logger.With().Str("file", path).Logger()

	rec, err := p.Loader.Load(path, p.Channel)
	if err != nil {
		return FileResult{}, err
	}
	if len(rec.Sweeps) == 0 {
		return FileResult{}, ErrNoSweeps
	}
	logger.Debug().
		Str("version", rec.Version.String()).
		Float64("sample_rate", rec.SampleRate).
		Int("sweeps", rec.SweepCount()).
		Float64("sweep_duration_s", rec.Duration()).
		Int("channel", rec.Channel).
		Str("units", rec.Units).
		Msg("recording loaded")

	hp, lp, err := p.Params.Designs(rec.SampleRate)
	if err != nil {
		return FileResult{}, err
	}
	b, a := lp.TransferFunction()
	logger.Debug().
		Floats64("b", b).
		Floats64("a", a).
		Float64("wn", lp.Wn).
		Float64("cutoff_gain_db", lp.MagnitudeDB(p.Params.CutoffHz, rec.SampleRate)).
		Msg("low-pass designed")

	t := rec.Sweeps[0].Time
	filtered := make([][]float64, len(rec.Sweeps))
	for i, sw := range rec.Sweeps {
		y := sw.Y
		if hp != nil {
			y = zerophase.Filter(y, *hp)
		}
		filtered[i] = zerophase.Filter(y, lp)
	}

	res = FileResult{
		Path:       path,
		Name:       rec.Name,
		Version:    rec.Version,
		SampleRate: rec.SampleRate,
		Channel:    rec.Channel,
		Units:      rec.Units,
		SweepCount: len(filtered),
	}
	if res.Name == "" {
		res.Name = filepath.Base(path)
	}

	res.Measurements = p.measure(logger, t, filtered)
	res.Spectral = p.spectralCheck(logger, rec.SampleRate, rec.Sweeps[0].Y, filtered[0])

	for _, at := range []float64{p.Markers.BaselineStart, p.Markers.BaselineEnd, p.Markers.Measure} {
		if at < t[0] || at > t[len(t)-1] {
			logger.Debug().Float64("marker", at).Float64("sweep_end", t[len(t)-1]).Msg("marker outside sweep time range")
		}
	}

	res.Outputs, err = p.Renderer.Render(Figure{
		Title:   render.Title(res.Name),
		XLabel:  render.TimeLabel,
		YLabel:  render.CurrentLabel(rec.Units),
		Time:    t,
		Sweeps:  filtered,
		Markers: p.Markers,
		OutDir:  p.OutDir,
		Stem:    strings.TrimSuffix(res.Name, filepath.Ext(res.Name)),
	})
	if err != nil {
		return FileResult{}, err
	}
	return res, nil
}

// measure takes the baseline-referenced reading of every sweep. A sweep that
// does not cover the markers yields no measurements for the file.
func (p *Processor) measure(logger zerolog.Logger, t []float64, sweeps [][]float64) []timestats.Measurement {
	out := make([]timestats.Measurement, 0, len(sweeps))
	for i, y := range sweeps {
		m, err := timestats.Measure(t, y, p.Markers.BaselineStart, p.Markers.BaselineEnd, p.Markers.Measure)
		if err != nil {
			logger.Debug().Err(err).Int("sweep", i).Msg("measurement skipped")
			return nil
		}
		logger.Info().
			Int("sweep", i).
			Float64("baseline", m.BaselineMean).
			Float64("noise", m.BaselineNoise).
			Float64("value", m.Value).
			Float64("delta", m.Delta).
			Msg("sweep measured")
		out = append(out, m)
	}
	return out
}

func (p *Processor) spectralCheck(logger zerolog.Logger, rate float64, raw, filtered []float64) *bandpower.Comparison {
	cmp, err := bandpower.Compare(raw, filtered, bandpower.Config{SampleRate: rate, CutoffHz: p.Params.CutoffHz})
	if err != nil {
		logger.Debug().Err(err).Msg("spectral check skipped")
		return nil
	}
	logger.Debug().
		Str("window", cmp.Raw.Window).
		Float64("raw_above_cutoff", cmp.Raw.AboveFraction).
		Float64("filtered_above_cutoff", cmp.Filtered.AboveFraction).
		Float64("attenuation", cmp.Attenuation()).
		Msg("spectral check")
	return &cmp
}
