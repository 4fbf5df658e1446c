package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd(st *cliState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show recent run summaries",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(st.cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("leaderboard: storage disabled in config")
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			fmt.Fprintf(out, "%-22s %-12s %-28s %7s %9s %7s %7s\n",
				"RUN", "DATASET", "MODEL", "SAMPLE", "ACCURACY", "ROUNDS", "FAILED")
			for _, e := range entries {
				fmt.Fprintf(out, "%-22s %-12s %-28s %7d %9.4f %7.2f %7d\n",
					e.RunID, e.Dataset, e.Model, e.SampleSize, e.Accuracy, e.AvgRounds, e.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to show")
	return cmd
}
