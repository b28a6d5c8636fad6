package batch

import (
	"context"
	"time"
)

// Failure is one file that could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Summary is the outcome of one batch run.
type Summary struct {
	Started   time.Time
	Finished  time.Time
	Processed []FileResult
	Failed    []Failure
	Missing   []string
	// Skipped lists present files not attempted because the run was
	// cancelled.
	Skipped []string
}

// Partial reports whether any file was missing, failed or skipped.
func (s Summary) Partial() bool {
	return len(s.Failed) > 0 || len(s.Missing) > 0 || len(s.Skipped) > 0
}

// Run processes every present file of r under baseDir in order, reporting
// each result as it completes and the missing files at the end. It stops
// between files when ctx is cancelled and returns ctx.Err() in that case.
func Run(ctx context.Context, baseDir string, r Range, proc *Processor, rep *Reporter) (Summary, error) {
	sum := Summary{Started: time.Now()}
	if err := r.Validate(); err != nil {
		return sum, err
	}

	plan := Resolve(baseDir, r)
	sum.Missing = plan.Missing
	proc.Logger.Debug().
		Int("present", len(plan.Present)).
		Int("missing", len(plan.Missing)).
		Msg("range resolved")

	var runErr error
	for i, path := range plan.Present {
		if err := ctx.Err(); err != nil {
			sum.Skipped = plan.Present[i:]
			runErr = err
			break
		}

		res, err := proc.Process(path)
		if err != nil {
			rep.Error(path, err)
			sum.Failed = append(sum.Failed, Failure{Path: path, Err: err})
			continue
		}
		rep.OK(path)
		sum.Processed = append(sum.Processed, res)
	}

	rep.Missing(sum.Missing)
	sum.Finished = time.Now()
	return sum, runErr
}
