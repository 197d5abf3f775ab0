// mbfile is a small command line tool exercising the file handle library:
// dumping, writing, truncating and rearranging file contents, and sniffing
// payload compression.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mbfile <command> [flags]",
		Short:         "Inspect and manipulate files through the mbfile library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newCatCmd())
	cmd.AddCommand(newWriteCmd())
	cmd.AddCommand(newTruncateCmd())
	cmd.AddCommand(newMoveCmd())
	cmd.AddCommand(newSniffCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
