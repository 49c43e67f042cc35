package integrity

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderjulianmartinez/data-guard/internal/dataset"
	"github.com/alexanderjulianmartinez/data-guard/internal/history"
	"github.com/alexanderjulianmartinez/data-guard/internal/snapshot"
)

// FileCheck is the classification of one tracked file after the collector
// has run.
type FileCheck struct {
	Path         string
	InitialCount int
	CurrentCount int
	InitialSize  int64
	CurrentSize  int64
	Status       string
	Err          error
}

// Verdict is the run outcome. OK=false blocks downstream propagation of
// the dataset changes; Changed=false with OK=true means no file grew and
// reporting is a no-op.
type Verdict struct {
	OK      bool
	Changed bool
	Files   []FileCheck
}

// Shrunk counts the files classified as LOSS.
func (v *Verdict) Shrunk() int {
	n := 0
	for _, f := range v.Files {
		if f.Status == StatusLoss {
			n++
		}
	}
	return n
}

// Checker compares post-collection state against the pre-collection
// snapshot and diagnoses any shrinkage against version history.
type Checker struct {
	fetcher history.Fetcher
	out     io.Writer
}

func NewChecker(fetcher history.Fetcher, out io.Writer) *Checker {
	return &Checker{fetcher: fetcher, out: out}
}

// Check re-evaluates pattern and classifies every file against the
// snapshot. The loss trigger compares row counts, not identifier sets;
// identifier-set comparison only happens inside diagnosis. A single
// shrunken file fails the whole run regardless of how the others fared.
func (c *Checker) Check(snap *snapshot.Snapshot, pattern string) (*Verdict, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("enumerate tracked files: %w", err)
	}

	verdict := &Verdict{OK: true}
	var shrunken []FileCheck
	for _, path := range paths {
		check := FileCheck{
			Path:         path,
			InitialCount: snap.Count(path),
			InitialSize:  snap.Size(path),
		}
		if fi, err := os.Stat(path); err == nil {
			check.CurrentSize = fi.Size()
		}

		tbl, err := dataset.Load(path)
		if err != nil {
			check.Status = StatusReadError
			check.Err = err
			verdict.OK = false
			fmt.Fprintf(c.out, "could not check %s: %v\n", path, err)
			verdict.Files = append(verdict.Files, check)
			continue
		}

		check.CurrentCount = tbl.RowCount()
		check.Status = statusFor(check.InitialCount, check.CurrentCount)
		switch check.Status {
		case StatusLoss:
			verdict.OK = false
			shrunken = append(shrunken, check)
			fmt.Fprintf(c.out, "%s LOST RECORDS: %d -> %d records (%+d), %d -> %d bytes\n",
				path, check.InitialCount, check.CurrentCount,
				check.CurrentCount-check.InitialCount, check.InitialSize, check.CurrentSize)
		case StatusGrowth:
			verdict.Changed = true
			fmt.Fprintf(c.out, "%s: %d -> %d records (+%d), %d -> %d bytes (%+d)\n",
				path, check.InitialCount, check.CurrentCount,
				check.CurrentCount-check.InitialCount, check.InitialSize, check.CurrentSize,
				check.CurrentSize-check.InitialSize)
		default:
			fmt.Fprintf(c.out, "%s: %d records (unchanged), %d bytes\n",
				path, check.CurrentCount, check.CurrentSize)
		}
		verdict.Files = append(verdict.Files, check)
	}

	if len(shrunken) > 0 {
		fmt.Fprintf(c.out, "\ndiagnostics for files with data loss:\n")
		for _, check := range shrunken {
			c.diagnose(check.Path, check.InitialCount)
		}
	}
	if !verdict.OK {
		verdict.Changed = false
	}
	return verdict, nil
}
