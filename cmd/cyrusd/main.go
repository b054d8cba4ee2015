// Command cyrusd runs the session orchestration daemon: it reads platform
// payloads as NDJSON on stdin, drives agent subprocesses for each session,
// and prints the resulting activity on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "cyrusd",
		Short:         "Session orchestration daemon for agent-driven issue work",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the cyrusd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return cmd
}
