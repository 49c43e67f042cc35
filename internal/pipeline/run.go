package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderjulianmartinez/data-guard/internal/collector"
	"github.com/alexanderjulianmartinez/data-guard/internal/history"
	"github.com/alexanderjulianmartinez/data-guard/internal/integrity"
	"github.com/alexanderjulianmartinez/data-guard/internal/snapshot"
	"github.com/alexanderjulianmartinez/data-guard/pkg/types"
)

// CollectorRunner runs the external collection process to completion.
type CollectorRunner interface {
	Run(ctx context.Context) (bool, string)
}

// Recorder persists the run summary for auditing.
type Recorder interface {
	RecordRun(ctx context.Context, run types.RunSummary) error
}

// VerdictPublisher pushes the run summary to downstream consumers.
type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, run types.RunSummary) error
}

// Pipeline sequences one guard run: snapshot, collect, check, report.
// Recorder and Publisher are optional; their failures are narrated but
// never change the verdict.
type Pipeline struct {
	Pattern   string
	Runner    CollectorRunner
	Fetcher   history.Fetcher
	Recorder  Recorder
	Publisher VerdictPublisher
	Out       io.Writer
}

// Run executes the full sequence and returns the verdict. The integrity
// check runs even when the collector fails, to capture whatever partial
// state resulted.
func (p *Pipeline) Run(ctx context.Context) (*integrity.Verdict, error) {
	start := time.Now()

	fmt.Fprintln(p.Out, "recording initial snapshot...")
	snap, err := snapshot.Take(p.Pattern, p.Out)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(p.Out, "\ncollecting current records...")
	collectorOK, output := p.Runner.Run(ctx)
	if collectorOK {
		fmt.Fprintln(p.Out, "collection completed")
	} else {
		fmt.Fprintln(p.Out, "collection failed, checking files for partial damage")
	}
	p.narrateCollectorStats(output)

	fmt.Fprintln(p.Out, "\nchecking dataset integrity...")
	checker := integrity.NewChecker(p.Fetcher, p.Out)
	verdict, err := checker.Check(snap, p.Pattern)
	if err != nil {
		return nil, err
	}

	recordsAdded := 0
	switch {
	case !verdict.OK:
		p.writeFailureNotice()
	case !verdict.Changed:
		fmt.Fprintln(p.Out, "\nno dataset files changed, skipping summary")
	default:
		fmt.Fprintln(p.Out, "\ncalculating record additions...")
		additions, err := integrity.Additions(snap, p.Pattern, p.Out)
		if err != nil {
			fmt.Fprintf(p.Out, "could not compute summary: %v\n", err)
			break
		}
		fmt.Fprintln(p.Out)
		integrity.WriteSummary(p.Out, additions)
		for _, a := range additions {
			if a.Added > 0 {
				recordsAdded += a.Added
			}
		}
	}

	run := types.RunSummary{
		StartedAt:    start,
		FinishedAt:   time.Now(),
		OK:           verdict.OK,
		Changed:      verdict.Changed,
		CollectorOK:  collectorOK,
		FilesChecked: len(verdict.Files),
		FilesShrunk:  verdict.Shrunk(),
		RecordsAdded: recordsAdded,
	}
	if p.Recorder != nil {
		if err := p.Recorder.RecordRun(ctx, run); err != nil {
			fmt.Fprintf(p.Out, "could not record run audit: %v\n", err)
		}
	}
	if p.Publisher != nil {
		if err := p.Publisher.PublishVerdict(ctx, run); err != nil {
			fmt.Fprintf(p.Out, "could not publish verdict: %v\n", err)
		}
	}
	return verdict, nil
}

func (p *Pipeline) narrateCollectorStats(output string) {
	if output == "" {
		return
	}
	stats := collector.ParseStats(output)
	if stats.NewJobs > 0 {
		fmt.Fprintf(p.Out, "collector reported %d new records\n", stats.NewJobs)
	}
	if len(stats.FailedDates) > 0 {
		fmt.Fprintf(p.Out, "collector reported failed dates: %v\n", stats.FailedDates)
	}
	for _, line := range stats.Errors {
		fmt.Fprintf(p.Out, "collector: %s\n", line)
	}
}

func (p *Pipeline) writeFailureNotice() {
	fmt.Fprintln(p.Out, "\nCRITICAL: data loss detected, refusing to propagate dataset changes")
	fmt.Fprintln(p.Out, "next steps:")
	fmt.Fprintln(p.Out, "  1. check the diagnostics above")
	fmt.Fprintln(p.Out, "  2. restore the affected files from version history if needed")
	fmt.Fprintln(p.Out, "  3. fix the root cause before running again")
}
