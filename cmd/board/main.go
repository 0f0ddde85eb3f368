// Command board is a terminal client for the kanban board. It renders the
// columns, searches them, and moves, creates, edits and deletes tasks against
// the task store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configDir string
	storeURL  string
	pages     int
	search    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !isReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "board",
		Short:         "Kanban board client for the task store",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configDir, "config", "", "directory containing config.yaml")
	pf.StringVar(&flags.storeURL, "store", "", "task store URL (overrides board.storeUrl)")

	rootCmd.AddCommand(viewCmd(&flags))
	rootCmd.AddCommand(searchCmd(&flags))
	rootCmd.AddCommand(moveCmd(&flags))
	rootCmd.AddCommand(createCmd(&flags))
	rootCmd.AddCommand(editCmd(&flags))
	rootCmd.AddCommand(deleteCmd(&flags))
	rootCmd.AddCommand(rebalanceCmd(&flags))
	rootCmd.AddCommand(watchCmd(&flags))
	return rootCmd
}
