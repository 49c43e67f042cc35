package integrity

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/alexanderjulianmartinez/data-guard/internal/dataset"
)

const (
	// Up to this many removed records get resolved to full posting details.
	maxDetailedRemovals = 10
	// Beyond that only a bounded identifier sample is shown.
	removedSampleSize = 5
)

// diagnose explains a count drop for one file by diffing identifier sets
// against the last committed version. Every failure here degrades the
// report, never the run: the verdict already failed on the count drop.
func (c *Checker) diagnose(path string, initialCount int) {
	fmt.Fprintf(c.out, "\ndiagnosing %s:\n", filepath.Base(path))

	current, err := dataset.Load(path)
	if err != nil {
		fmt.Fprintf(c.out, "  error during diagnosis: %v\n", err)
		return
	}

	currentCount := current.RowCount()
	fmt.Fprintf(c.out, "  initial records: %d\n", initialCount)
	fmt.Fprintf(c.out, "  current records: %d\n", currentCount)
	switch delta := currentCount - initialCount; {
	case delta > 0:
		fmt.Fprintf(c.out, "  records gained: %d\n", delta)
	case delta < 0:
		fmt.Fprintf(c.out, "  records lost: %d\n", -delta)
	default:
		fmt.Fprintf(c.out, "  records unchanged\n")
	}

	raw, err := c.fetcher.Fetch(path)
	if err != nil {
		fmt.Fprintf(c.out, "  historical comparison unavailable: %v\n", err)
		return
	}

	historical, err := dataset.Parse(bytes.NewReader(raw))
	if err != nil {
		fmt.Fprintf(c.out, "  error during diagnosis: %v\n", err)
		return
	}

	historicalIDs, ok := historical.ControlNumbers()
	if !ok {
		fmt.Fprintf(c.out, "  no control number column found for comparison\n")
		return
	}
	currentIDs, ok := current.ControlNumbers()
	if !ok {
		fmt.Fprintf(c.out, "  no control number column found for comparison\n")
		return
	}

	removed, added := Diff(historicalIDs, currentIDs)
	fmt.Fprintf(c.out, "  records removed: %d\n", len(removed))
	fmt.Fprintf(c.out, "  records added: %d\n", len(added))

	if len(removed) == 0 {
		return
	}

	ids := sortedIDs(removed)
	if len(ids) <= maxDetailedRemovals {
		fmt.Fprintf(c.out, "  removed records:\n")
		for _, id := range ids {
			posting, ok := historical.Posting(id)
			if !ok {
				fmt.Fprintf(c.out, "  - %s\n", id)
				continue
			}
			fmt.Fprintf(c.out, "  - %s: %s (%s) - opened %s\n",
				id, posting.Title, posting.Agency, posting.OpenDate)
		}
		return
	}

	fmt.Fprintf(c.out, "  too many removed records to list (%d total)\n", len(ids))
	fmt.Fprintf(c.out, "  first %d control numbers: %v\n", removedSampleSize, ids[:removedSampleSize])
}

// Diff reconciles the two identifier sets. The results are disjoint:
// removed holds identifiers only in historical, added those only in
// current.
func Diff(historical, current map[string]struct{}) (removed, added map[string]struct{}) {
	removed = make(map[string]struct{})
	added = make(map[string]struct{})
	for id := range historical {
		if _, ok := current[id]; !ok {
			removed[id] = struct{}{}
		}
	}
	for id := range current {
		if _, ok := historical[id]; !ok {
			added[id] = struct{}{}
		}
	}
	return removed, added
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
