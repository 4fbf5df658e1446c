package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arbiterlab/madbench/internal/dataset"
)

func newDatasetCmd(st *cliState) *cobra.Command {
	var sampleSize int
	var split string

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Smoke-test the dataset loader",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if split == "" {
				split = st.cfg.Experiment.DatasetSplit
			}

			loader := &dataset.BarExamQA{Split: split, SampleSize: sampleSize}
			qs, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d questions from %s (%s split)\n", len(qs), loader.Name(), split)
			if len(qs) == 0 {
				return nil
			}

			q := qs[0]
			fmt.Fprintf(out, "\nSample question:\n")
			fmt.Fprintf(out, "  ID: %s\n", q.ID)
			fmt.Fprintf(out, "  Question: %s\n", truncate(q.Question, 120))
			for i, c := range q.Choices {
				fmt.Fprintf(out, "  %c) %s\n", 'A'+i, truncate(c, 80))
			}
			fmt.Fprintf(out, "  Answer: %s\n", q.Answer)
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleSize, "sample-size", 5, "questions to load (0 = all)")
	cmd.Flags().StringVar(&split, "split", "", "dataset split: train|validation|test")
	return cmd
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
