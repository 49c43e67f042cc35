package integrity

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderjulianmartinez/data-guard/internal/history"
	"github.com/alexanderjulianmartinez/data-guard/internal/snapshot"
)

// fakeFetcher serves historical file content from memory.
type fakeFetcher struct {
	files map[string][]byte
}

func (f *fakeFetcher) Fetch(path string) ([]byte, error) {
	if content, ok := f.files[path]; ok {
		return content, nil
	}
	return nil, history.ErrNotFound
}

func csvWithIDs(ids ...string) string {
	var b strings.Builder
	b.WriteString("usajobsControlNumber,positionTitle,hiringAgencyName,positionOpenDate\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "%s,Title %s,Agency %s,2025-01-01\n", id, id, id)
	}
	return b.String()
}

func seqIDs(from, to int) []string {
	var ids []string
	for i := from; i <= to; i++ {
		ids = append(ids, fmt.Sprintf("%03d", i))
	}
	return ids
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func takeSnapshot(t *testing.T, pattern string) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Take(pattern, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("take snapshot: %v", err)
	}
	return snap
}

func TestCheck_UnchangedFilePasses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 100)...))
	snap := takeSnapshot(t, pattern)

	var out bytes.Buffer
	verdict, err := NewChecker(&fakeFetcher{}, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !verdict.OK {
		t.Fatalf("expected ok=true, got %+v", verdict)
	}
	if verdict.Changed {
		t.Fatalf("expected changed=false for unchanged file")
	}
}

func TestCheck_GrowthSetsChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 100)...))
	snap := takeSnapshot(t, pattern)
	writeFile(t, path, csvWithIDs(seqIDs(1, 130)...))

	var out bytes.Buffer
	verdict, err := NewChecker(&fakeFetcher{}, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !verdict.OK || !verdict.Changed {
		t.Fatalf("expected ok=true changed=true, got %+v", verdict)
	}
}

func TestCheck_SingleShrunkenFileFailsVerdict(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	shrunk := filepath.Join(dir, "current_jobs_2020.csv")
	writeFile(t, shrunk, csvWithIDs(seqIDs(1, 100)...))
	for year := 2021; year <= 2029; year++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("current_jobs_%d.csv", year)),
			csvWithIDs(seqIDs(1, 50)...))
	}
	snap := takeSnapshot(t, pattern)

	// One file loses records, the other nine grow.
	writeFile(t, shrunk, csvWithIDs(seqIDs(1, 95)...))
	for year := 2021; year <= 2029; year++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("current_jobs_%d.csv", year)),
			csvWithIDs(seqIDs(1, 80)...))
	}

	var out bytes.Buffer
	verdict, err := NewChecker(&fakeFetcher{}, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict.OK {
		t.Fatalf("expected ok=false with one shrunken file among grown ones")
	}
	if verdict.Shrunk() != 1 {
		t.Fatalf("expected exactly 1 shrunken file, got %d", verdict.Shrunk())
	}
	if !strings.Contains(out.String(), "LOST RECORDS") {
		t.Fatalf("expected loss narration, got: %s", out.String())
	}
}

func TestCheck_DiagnosisListsRemovedPostings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 100)...))
	snap := takeSnapshot(t, pattern)

	// Five records vanish; the committed version still has all 100.
	writeFile(t, path, csvWithIDs(seqIDs(6, 100)...))
	fetcher := &fakeFetcher{files: map[string][]byte{
		path: []byte(csvWithIDs(seqIDs(1, 100)...)),
	}}

	var out bytes.Buffer
	verdict, err := NewChecker(fetcher, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict.OK {
		t.Fatalf("expected ok=false")
	}
	report := out.String()
	if !strings.Contains(report, "records removed: 5") {
		t.Fatalf("expected 5 removed records, got: %s", report)
	}
	for _, id := range seqIDs(1, 5) {
		want := fmt.Sprintf("- %s: Title %s (Agency %s) - opened 2025-01-01", id, id, id)
		if !strings.Contains(report, want) {
			t.Fatalf("expected removed posting line %q, got: %s", want, report)
		}
	}
}

func TestCheck_DiagnosisDegradesWithoutHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 100)...))
	snap := takeSnapshot(t, pattern)
	writeFile(t, path, csvWithIDs(seqIDs(1, 95)...))

	var out bytes.Buffer
	verdict, err := NewChecker(&fakeFetcher{}, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict.OK {
		t.Fatalf("expected ok=false even when history is unavailable")
	}
	if !strings.Contains(out.String(), "historical comparison unavailable") {
		t.Fatalf("expected degraded diagnosis, got: %s", out.String())
	}
}

func TestCheck_ManyRemovalsAreSampled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 100)...))
	snap := takeSnapshot(t, pattern)

	// Fifteen records vanish.
	writeFile(t, path, csvWithIDs(seqIDs(16, 100)...))
	fetcher := &fakeFetcher{files: map[string][]byte{
		path: []byte(csvWithIDs(seqIDs(1, 100)...)),
	}}

	var out bytes.Buffer
	if _, err := NewChecker(fetcher, &out).Check(snap, pattern); err != nil {
		t.Fatalf("check: %v", err)
	}
	report := out.String()
	if !strings.Contains(report, "too many removed records to list (15 total)") {
		t.Fatalf("expected bounded sample for 15 removals, got: %s", report)
	}
	if !strings.Contains(report, "first 5 control numbers: [001 002 003 004 005]") {
		t.Fatalf("expected 5-identifier sample, got: %s", report)
	}
	if strings.Contains(report, "removed records:\n") {
		t.Fatalf("expected no full listing for 15 removals, got: %s", report)
	}
}

func TestCheck_NoIdentifierColumnFallsBackToCounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, "title\na\nb\nc\n")
	snap := takeSnapshot(t, pattern)
	writeFile(t, path, "title\na\nb\n")

	fetcher := &fakeFetcher{files: map[string][]byte{
		path: []byte("title\na\nb\nc\n"),
	}}
	var out bytes.Buffer
	verdict, err := NewChecker(fetcher, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict.OK {
		t.Fatalf("expected ok=false")
	}
	if !strings.Contains(out.String(), "no control number column found") {
		t.Fatalf("expected count-only fallback, got: %s", out.String())
	}
}

func TestCheck_ReadErrorIsDistinctFromLoss(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	broken := filepath.Join(dir, "current_jobs_2024.csv")
	grown := filepath.Join(dir, "current_jobs_2025.csv")
	writeFile(t, broken, csvWithIDs(seqIDs(1, 10)...))
	writeFile(t, grown, csvWithIDs(seqIDs(1, 10)...))
	snap := takeSnapshot(t, pattern)

	// The first file becomes unparseable, the second grows.
	writeFile(t, broken, "usajobsControlNumber\n\"oops\n")
	writeFile(t, grown, csvWithIDs(seqIDs(1, 20)...))

	var out bytes.Buffer
	verdict, err := NewChecker(&fakeFetcher{}, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if verdict.OK {
		t.Fatalf("expected read error to block propagation")
	}
	var brokenCheck, grownCheck *FileCheck
	for i := range verdict.Files {
		switch verdict.Files[i].Path {
		case broken:
			brokenCheck = &verdict.Files[i]
		case grown:
			grownCheck = &verdict.Files[i]
		}
	}
	if brokenCheck == nil || brokenCheck.Status != StatusReadError {
		t.Fatalf("expected READ_ERROR for %s, got %+v", broken, brokenCheck)
	}
	if brokenCheck.Err == nil {
		t.Fatalf("expected read error to be recorded")
	}
	if grownCheck == nil || grownCheck.Status != StatusGrowth {
		t.Fatalf("expected GROWTH for %s, got %+v", grown, grownCheck)
	}
	if verdict.Shrunk() != 0 {
		t.Fatalf("read error must not be counted as loss, got %d", verdict.Shrunk())
	}
}

func TestCheck_SecondCheckIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_jobs_2025.csv")
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 100)...))
	snap := takeSnapshot(t, pattern)

	checker := NewChecker(&fakeFetcher{}, &bytes.Buffer{})
	first, err := checker.Check(snap, pattern)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	// No collector run in between: re-snapshot and re-check.
	snap = takeSnapshot(t, pattern)
	second, err := checker.Check(snap, pattern)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !first.OK || !second.OK {
		t.Fatalf("expected both checks to pass")
	}
	if second.Changed {
		t.Fatalf("expected changed=false on the second check")
	}
}

func TestCheck_NewFileDuringCollectionIsGrowth(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "current_jobs_*.csv")
	snap := takeSnapshot(t, pattern)

	// Created by the collector, absent from the snapshot.
	path := filepath.Join(dir, "current_jobs_2026.csv")
	writeFile(t, path, csvWithIDs(seqIDs(1, 10)...))

	var out bytes.Buffer
	verdict, err := NewChecker(&fakeFetcher{}, &out).Check(snap, pattern)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !verdict.OK || !verdict.Changed {
		t.Fatalf("expected new file to count as growth, got %+v", verdict)
	}
}

func TestDiff_DisjointAndComplete(t *testing.T) {
	historical := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	current := map[string]struct{}{"b": {}, "c": {}, "d": {}, "e": {}}

	removed, added := Diff(historical, current)
	if len(removed) != 1 {
		t.Fatalf("expected 1 removed, got %v", removed)
	}
	if _, ok := removed["a"]; !ok {
		t.Fatalf("expected a removed, got %v", removed)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 added, got %v", added)
	}
	for id := range removed {
		if _, ok := added[id]; ok {
			t.Fatalf("removed and added must be disjoint, both contain %s", id)
		}
	}
}
