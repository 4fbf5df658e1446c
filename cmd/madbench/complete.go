package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbiterlab/madbench/internal/llm"
)

func newCompleteCmd(st *cliState) *cobra.Command {
	var prompt string
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Smoke-test the completion client",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := llm.DefaultProvider(st.cfg)
			if err != nil {
				return err
			}

			resp, err := provider.Complete(cmd.Context(), &llm.Request{
				Messages:  []llm.Message{{Role: "user", Content: prompt}},
				MaxTokens: maxTokens,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", resp.Text)
			fmt.Fprintf(out, "\n[provider=%s tokens_in=%d tokens_out=%d latency_ms=%d]\n",
				provider.Name(), resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.LatencyMs)
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "Reply with the single word: ready", "prompt to send")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 64, "max completion tokens")
	return cmd
}
