package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderjulianmartinez/data-guard/internal/audit"
	"github.com/alexanderjulianmartinez/data-guard/internal/collector"
	"github.com/alexanderjulianmartinez/data-guard/internal/config"
	"github.com/alexanderjulianmartinez/data-guard/internal/dataset"
	"github.com/alexanderjulianmartinez/data-guard/internal/history"
	"github.com/alexanderjulianmartinez/data-guard/internal/notify"
	"github.com/alexanderjulianmartinez/data-guard/internal/pipeline"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dataguard error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 {
		printUsage()
		return nil
	}

	switch args[1] {
	case "run":
		return runPipeline(args[2:])
	case "verify":
		return runVerify(args[2:])
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func runPipeline(args []string) error {
	cfg, err := loadConfig("run", args)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Pattern: cfg.Data.Pattern,
		Runner:  collector.NewRunner(cfg.Collector.Command, cfg.Collector.Dir),
		Fetcher: history.NewGitFetcher(cfg.History.Repo),
		Out:     os.Stdout,
	}

	if cfg.Audit.DSN != "" {
		store, err := audit.NewStore(cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("connect audit store: %w", err)
		}
		defer store.Close()
		p.Recorder = store
	}
	if len(cfg.Notify.Brokers) > 0 {
		publisher := notify.NewPublisher(cfg.Notify.Brokers, cfg.Notify.Topic)
		defer publisher.Close()
		p.Publisher = publisher
	}

	verdict, err := p.Run(context.Background())
	if err != nil {
		return err
	}
	if !verdict.OK {
		return fmt.Errorf("integrity check failed, refusing to propagate dataset changes")
	}
	fmt.Println("\nupdate completed successfully")
	return nil
}

func runVerify(args []string) error {
	cfg, err := loadConfig("verify", args)
	if err != nil {
		return err
	}

	paths, err := filepath.Glob(cfg.Data.Pattern)
	if err != nil {
		return fmt.Errorf("enumerate tracked files: %w", err)
	}

	failed := 0
	for _, path := range paths {
		tbl, err := dataset.Load(path)
		if err != nil {
			fmt.Printf("%s: unreadable: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: %d records, %s identifier column\n",
			path, tbl.RowCount(), tbl.Variant())
	}
	fmt.Printf("verified %d files, %d unreadable\n", len(paths), failed)
	if failed > 0 {
		return fmt.Errorf("%d tracked files are unreadable", failed)
	}
	return nil
}

func loadConfig(command string, args []string) (*config.Config, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *configPath == "" {
		return nil, fmt.Errorf("missing required flag: --config")
	}
	return config.LoadConfig(*configPath)
}

func printUsage() {
	fmt.Print(`DataGuard - dataset integrity guard

Usage:
  dataguard run --config <path>
  dataguard verify --config <path>

Commands:
  run       Snapshot tracked files, run the collector, check integrity
  verify    Check that every tracked file is readable
  help      Show this help message
`)
}
