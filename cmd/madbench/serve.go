package main

import (
	"github.com/spf13/cobra"

	"github.com/arbiterlab/madbench/internal/api"
)

func newServeCmd(st *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve past run results and the leaderboard over HTTP",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return st.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(st.cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			srv := api.NewServer(st.cfg.Experiment.ResultsDir, store)
			return srv.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
