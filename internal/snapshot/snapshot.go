package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderjulianmartinez/data-guard/internal/dataset"
)

// FileState is the recorded size and row count of one tracked file.
type FileState struct {
	Path  string
	Size  int64
	Count int
}

// Snapshot holds the pre-collection state of every tracked file. It is
// created once at the start of a run, read during the integrity check and
// discarded afterwards.
type Snapshot struct {
	files map[string]FileState
}

// Take records size and row count for every file matching pattern. A file
// that cannot be read is recorded with count 0: it cannot establish a
// baseline, so any later non-zero count counts as pure growth.
func Take(pattern string, out io.Writer) (*Snapshot, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("enumerate tracked files: %w", err)
	}

	snap := &Snapshot{files: make(map[string]FileState, len(paths))}
	for _, path := range paths {
		state := FileState{Path: path}
		if fi, err := os.Stat(path); err == nil {
			state.Size = fi.Size()
		}

		tbl, err := dataset.Load(path)
		if err != nil {
			fmt.Fprintf(out, "could not read %s: %v (treating as new file)\n", path, err)
		} else {
			state.Count = tbl.RowCount()
			fmt.Fprintf(out, "%s: %d records, %d bytes\n", filepath.Base(path), state.Count, state.Size)
		}
		snap.files[path] = state
	}
	return snap, nil
}

// Count returns the recorded row count for path, 0 if the path was not
// present at snapshot time.
func (s *Snapshot) Count(path string) int {
	return s.files[path].Count
}

// Size returns the recorded byte size for path.
func (s *Snapshot) Size(path string) int64 {
	return s.files[path].Size
}

// Len is the number of files recorded.
func (s *Snapshot) Len() int {
	return len(s.files)
}
