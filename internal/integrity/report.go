package integrity

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/alexanderjulianmartinez/data-guard/internal/dataset"
	"github.com/alexanderjulianmartinez/data-guard/internal/snapshot"
)

// Addition is the net growth of one tracked file over the run.
type Addition struct {
	Name  string
	Added int
}

// Additions computes per-file net additions after a passing run. Files
// that did not grow are still listed with 0. Only meaningful when the
// verdict passed: loss is ruled out, so every delta is non-negative.
func Additions(snap *snapshot.Snapshot, pattern string, out io.Writer) ([]Addition, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("enumerate tracked files: %w", err)
	}

	var additions []Addition
	for _, path := range paths {
		name := filepath.Base(path)
		tbl, err := dataset.Load(path)
		if err != nil {
			fmt.Fprintf(out, "could not read %s: %v\n", path, err)
			additions = append(additions, Addition{Name: name})
			continue
		}

		initial := snap.Count(path)
		current := tbl.RowCount()
		added := current - initial
		if added > 0 {
			fmt.Fprintf(out, "%s: %d records added (was %d, now %d)\n", name, added, initial, current)
		} else {
			fmt.Fprintf(out, "%s: no new records (still %d)\n", name, current)
		}
		additions = append(additions, Addition{Name: name, Added: added})
	}

	sort.Slice(additions, func(i, j int) bool {
		return additions[i].Name < additions[j].Name
	})
	return additions, nil
}

// WriteSummary renders the sorted per-file additions block.
func WriteSummary(out io.Writer, additions []Addition) {
	fmt.Fprintln(out, "records added per file:")
	for _, a := range additions {
		if a.Added > 0 {
			fmt.Fprintf(out, "  %s: %d records added\n", a.Name, a.Added)
		} else {
			fmt.Fprintf(out, "  %s: 0 records added\n", a.Name)
		}
	}
}
