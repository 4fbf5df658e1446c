package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbiterlab/madbench/internal/config"
)

type cliState struct {
	configPath string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "madbench",
		Short:         "Run multi-agent debate experiments over the Bar Exam QA dataset",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newDatasetCmd(st))
	root.AddCommand(newCompleteCmd(st))
	root.AddCommand(newLeaderboardCmd(st))
	root.AddCommand(newServeCmd(st))
	return root
}

// loadConfig reads the config file; a missing file at the default path
// falls back to defaults plus environment variables, so `madbench run`
// works with nothing but GROQ_API_KEY set.
func (st *cliState) loadConfig() error {
	cfg, err := config.Load(st.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && st.configPath == config.DefaultPath {
			st.cfg = config.Default()
			return nil
		}
		return err
	}
	st.cfg = cfg
	return nil
}
