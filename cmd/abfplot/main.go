// Command abfplot filters every sweep of a numbered range of ABF recordings
// with a zero-phase Butterworth low-pass and saves an overlay plot of each
// file as PNG and PDF, marking the baseline window and measurement time.
//
// Usage:
//
//	abfplot --base-dir DIR --start N --end M [flags]
//
// Examples:
//
//	abfplot --base-dir data --start 77 --end 84
//	abfplot --base-dir data --start 1 --end 3 --cutoff 2000 --baseline 0.002 0.004
//	ABFPLOT_BASE_DIR=data abfplot --start 77 --end 84 --report run.yaml --strict
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cwbudde/abfplot/dsp/filter/zerophase"
	"github.com/cwbudde/abfplot/internal/batch"
	"github.com/cwbudde/abfplot/internal/config"
	"github.com/cwbudde/abfplot/internal/logging"
	"github.com/cwbudde/abfplot/internal/report"
	"github.com/cwbudde/abfplot/render"
)

var errPartial = errors.New("some files were missing or failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(config.JoinBaselineArgs(args))
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "abfplot",
		Short:        "Batch plot ABF files with zero-phase low-pass filtering",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runBatch(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	config.RegisterFlags(cmd)
	return cmd
}

func runBatch(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger, err := logging.Setup(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	runID := report.NewRunID()
	logger = logger.With().Str("run_id", runID).Logger()

	params := zerophase.Params{CutoffHz: cfg.Cutoff, Order: cfg.Order, HighpassHz: cfg.Highpass}
	markers := render.Markers{
		BaselineStart: cfg.Baseline[0],
		BaselineEnd:   cfg.Baseline[1],
		Measure:       cfg.Measure,
	}

	proc := batch.NewProcessor(params, markers, cfg.OutDir, logger)
	proc.Channel = cfg.Channel
	proc.Renderer = batch.FigureRenderer{Options: []render.Option{render.WithDPI(cfg.DPI)}}

	rng := batch.Range{Prefix: cfg.DatePrefix, Start: cfg.Start, End: cfg.End}
	sum, runErr := batch.Run(ctx, cfg.BaseDir, rng, proc, &batch.Reporter{Out: stdout, Err: stderr})
	logger.Info().
		Int("processed", len(sum.Processed)).
		Int("failed", len(sum.Failed)).
		Int("missing", len(sum.Missing)).
		Dur("elapsed", sum.Finished.Sub(sum.Started)).
		Msg("batch finished")

	if cfg.Report != "" {
		rep := report.New(runID, report.Parameters{
			BaseDir:       cfg.BaseDir,
			DatePrefix:    cfg.DatePrefix,
			Start:         cfg.Start,
			End:           cfg.End,
			CutoffHz:      cfg.Cutoff,
			Order:         cfg.Order,
			HighpassHz:    cfg.Highpass,
			Channel:       cfg.Channel,
			BaselineStart: markers.BaselineStart,
			BaselineEnd:   markers.BaselineEnd,
			Measure:       markers.Measure,
			OutDir:        cfg.OutDir,
		}, sum)
		if err := report.Write(cfg.Report, rep); err != nil {
			return err
		}
		logger.Debug().Str("path", cfg.Report).Msg("report written")
	}

	if runErr != nil {
		return runErr
	}
	if cfg.Strict && sum.Partial() {
		return fmt.Errorf("%w: %d failed, %d missing", errPartial, len(sum.Failed), len(sum.Missing))
	}
	return nil
}
