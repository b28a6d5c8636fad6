// Package report writes the YAML summary of a batch run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/abfplot/internal/batch"
)

// NewRunID returns a fresh identifier for one batch run.
func NewRunID() string {
	return uuid.NewString()
}

// Parameters records the settings a run used.
type Parameters struct {
	BaseDir       string  `yaml:"base_dir"`
	DatePrefix    string  `yaml:"date_prefix"`
	Start         int     `yaml:"start"`
	End           int     `yaml:"end"`
	CutoffHz      float64 `yaml:"cutoff_hz"`
	Order         int     `yaml:"order"`
	HighpassHz    float64 `yaml:"highpass_hz,omitempty"`
	Channel       int     `yaml:"channel"`
	BaselineStart float64 `yaml:"baseline_start_s"`
	BaselineEnd   float64 `yaml:"baseline_end_s"`
	Measure       float64 `yaml:"measure_s"`
	OutDir        string  `yaml:"outdir"`
}

// Report is the document written for one run.
type Report struct {
	RunID      string     `yaml:"run_id"`
	Started    time.Time  `yaml:"started"`
	Finished   time.Time  `yaml:"finished"`
	Parameters Parameters `yaml:"parameters"`
	Files      []File     `yaml:"files"`
	Failures   []Failure  `yaml:"failures,omitempty"`
	Missing    []string   `yaml:"missing,omitempty"`
	Skipped    []string   `yaml:"skipped,omitempty"`
}

// File is one processed recording.
type File struct {
	Path       string   `yaml:"path"`
	Version    string   `yaml:"version"`
	SampleRate float64  `yaml:"sample_rate_hz"`
	Channel    int      `yaml:"channel"`
	Units      string   `yaml:"units,omitempty"`
	Sweeps     int      `yaml:"sweeps"`
	PNG        string   `yaml:"png"`
	PDF        string   `yaml:"pdf"`
	Sweep      []Sweep  `yaml:"measurements,omitempty"`
	Spectral   *Spectra `yaml:"spectral,omitempty"`
}

// Sweep is the baseline-referenced reading of one sweep.
type Sweep struct {
	Index         int     `yaml:"sweep"`
	BaselineMean  float64 `yaml:"baseline_mean"`
	BaselineNoise float64 `yaml:"baseline_noise"`
	Value         float64 `yaml:"value"`
	Delta         float64 `yaml:"delta"`
}

// Spectra holds the fraction of first-sweep power above the cutoff.
type Spectra struct {
	RawAboveCutoff      float64 `yaml:"raw_above_cutoff"`
	FilteredAboveCutoff float64 `yaml:"filtered_above_cutoff"`
}

// Failure is one file that could not be processed.
type Failure struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error"`
}

// New builds the report of a finished run.
func New(runID string, params Parameters, sum batch.Summary) Report {
	r := Report{
		RunID:      runID,
		Started:    sum.Started.UTC(),
		Finished:   sum.Finished.UTC(),
		Parameters: params,
		Files:      make([]File, 0, len(sum.Processed)),
		Missing:    sum.Missing,
		Skipped:    sum.Skipped,
	}

	for _, res := range sum.Processed {
		f := File{
			Path:       res.Path,
			Version:    res.Version.String(),
			SampleRate: res.SampleRate,
			Channel:    res.Channel,
			Units:      res.Units,
			Sweeps:     res.SweepCount,
			PNG:        res.Outputs.PNG,
			PDF:        res.Outputs.PDF,
		}
		for i, m := range res.Measurements {
			f.Sweep = append(f.Sweep, Sweep{
				Index:         i,
				BaselineMean:  m.BaselineMean,
				BaselineNoise: m.BaselineNoise,
				Value:         m.Value,
				Delta:         m.Delta,
			})
		}
		if res.Spectral != nil {
			f.Spectral = &Spectra{
				RawAboveCutoff:      res.Spectral.Raw.AboveFraction,
				FilteredAboveCutoff: res.Spectral.Filtered.AboveFraction,
			}
		}
		r.Files = append(r.Files, f)
	}

	for _, fail := range sum.Failed {
		r.Failures = append(r.Failures, Failure{Path: fail.Path, Error: fail.Err.Error()})
	}
	return r
}

// Write stores r as YAML at path, creating parent directories.
func Write(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
