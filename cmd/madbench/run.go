package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arbiterlab/madbench/internal/config"
	"github.com/arbiterlab/madbench/internal/dataset"
	"github.com/arbiterlab/madbench/internal/debate"
	"github.com/arbiterlab/madbench/internal/leaderboard"
	"github.com/arbiterlab/madbench/internal/llm"
	"github.com/arbiterlab/madbench/internal/metrics"
	"github.com/arbiterlab/madbench/internal/runner"
)

type runOptions struct {
	sampleSize  int
	concurrency int
	split       string
	dryRun      bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a debate experiment batch and save results",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, st, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.sampleSize, "sample-size", 0, "questions to sample (0 = config default)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "worker count (0 = config default)")
	cmd.Flags().StringVar(&opts.split, "split", "", "dataset split: train|validation|test (default from config)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "skip the leaderboard write")

	return cmd
}

func runExperiment(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}

	cfg := st.cfg

	sampleSize := cfg.Experiment.SampleSize
	if opts.sampleSize > 0 {
		sampleSize = opts.sampleSize
	}
	concurrency := cfg.Experiment.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}
	split := strings.TrimSpace(opts.split)
	if split == "" {
		split = cfg.Experiment.DatasetSplit
	}

	// Credentials are checked here, before the dataset fetch and before
	// any results directory is touched.
	provider, err := llm.DefaultProvider(cfg)
	if err != nil {
		return err
	}
	throttle := llm.NewThrottle(cfg.Experiment.RequestsPerMinute)

	judge, err := llm.JudgeProvider(cfg)
	if err != nil {
		return err
	}
	var scorer *metrics.Scorer
	var judgeModel string
	if judge != nil {
		scorer = &metrics.Scorer{Provider: llm.Throttled(judge, throttle)}
		judgeModel = providerModel(cfg, cfg.LLM.JudgeProvider)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &runner.Runner{
		Loader: &dataset.BarExamQA{Split: split, SampleSize: sampleSize},
		Engine: debate.NewEngine(llm.Throttled(provider, throttle)),
		Scorer: scorer,
		Store:  store,
		Config: runner.Config{
			Model:       providerModel(cfg, cfg.LLM.DefaultProvider),
			JudgeModel:  judgeModel,
			Concurrency: concurrency,
			Timeout:     cfg.Experiment.Timeout,
			ResultsDir:  cfg.Experiment.ResultsDir,
			DryRun:      opts.dryRun,
		},
	}

	out := cmd.OutOrStdout()
	report, runErr := r.Run(ctx)
	if report == nil {
		return runErr
	}

	fmt.Fprintf(out, "Run %s: dataset=%s model=%s sample=%d accuracy=%.4f avg_rounds=%.2f failed=%d\n",
		report.RunID,
		report.Dataset,
		report.Model,
		report.SampleSize,
		report.Accuracy,
		report.AvgRounds,
		report.Failed,
	)

	if report.Interrupted {
		fmt.Fprintf(out, "Interrupted: partial results for %d questions written to %s\n",
			len(report.Results), cfg.Experiment.ResultsDir)
		return nil
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "Results written to %s\n", cfg.Experiment.ResultsDir)
	return nil
}

func openStore(cfg *config.Config) (*leaderboard.Store, error) {
	if cfg == nil {
		return nil, errors.New("leaderboard: missing config")
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	switch storageType {
	case "", "sqlite":
		path := strings.TrimSpace(cfg.Storage.Path)
		if path == "" {
			path = leaderboard.DefaultPath
		}
		return leaderboard.NewStore(path)
	case "memory":
		return leaderboard.NewStore(":memory:")
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("leaderboard: unsupported storage type %q", storageType)
	}
}

func providerModel(cfg *config.Config, providerName string) string {
	if cfg == nil {
		return ""
	}
	pcfg, ok := cfg.LLM.Providers[strings.ToLower(strings.TrimSpace(providerName))]
	if !ok || strings.TrimSpace(pcfg.Model) == "" {
		return "default"
	}
	return strings.TrimSpace(pcfg.Model)
}
