package batch

import (
	"fmt"
	"io"
)

// Reporter writes the per-file console lines and the trailing missing-file
// block.
type Reporter struct {
	Out io.Writer
	Err io.Writer
}

// OK reports a processed file.
func (r *Reporter) OK(path string) {
	fmt.Fprintf(r.Out, "[OK] Processed %s\n", path)
}

// Error reports a failed file.
func (r *Reporter) Error(path string, err error) {
	fmt.Fprintf(r.Err, "[ERROR] %s: %v\n", path, err)
}

// Missing reports the files that were expected but not found. It prints
// nothing when paths is empty.
func (r *Reporter) Missing(paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(r.Out, "\n[WARNING] Missing files:")
	for _, p := range paths {
		fmt.Fprintf(r.Out, " - %s\n", p)
	}
}
