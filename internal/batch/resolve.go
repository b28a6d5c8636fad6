package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidRange is returned for ranges whose start lies after their end.
var ErrInvalidRange = errors.New("batch: start must not exceed end")

// BuildFilename returns "{prefix}_{index:04d}.abf". Indices wider than four
// digits are printed in full.
func BuildFilename(prefix string, index int) string {
	return fmt.Sprintf("%s_%04d.abf", prefix, index)
}

// Range is an inclusive span of file indices sharing a prefix.
type Range struct {
	Prefix string
	Start  int
	End    int
}

// Validate reports whether the range is well formed.
func (r Range) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.Start > r.End {
		return 0
	}
	return r.End - r.Start + 1
}

// Filenames returns the file name of every index in the range, in order.
func (r Range) Filenames() []string {
	names := make([]string, 0, r.Len())
	for i := r.Start; i <= r.End; i++ {
		names = append(names, BuildFilename(r.Prefix, i))
	}
	return names
}

// Plan partitions the expected paths of a range into those present on disk
// and those missing. Both keep range order.
type Plan struct {
	Present []string
	Missing []string
}

// Resolve joins every name of r to baseDir and checks for a regular file at
// each path. Directories and unreadable entries count as missing.
func Resolve(baseDir string, r Range) Plan {
	var plan Plan
	for _, name := range r.Filenames() {
		path := filepath.Join(baseDir, name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			plan.Present = append(plan.Present, path)
		} else {
			plan.Missing = append(plan.Missing, path)
		}
	}
	return plan
}
