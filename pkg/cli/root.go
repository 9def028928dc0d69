package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo is injected during build.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// NewRootCommand returns the mocks command with all its subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "mocks",
		Short: "mocks serves HTTP mocks defined as routes, variants and collections",
		Long: `mocks serves HTTP mocks from a mocks folder.

Routes define the requests to answer and their possible responses (variants).
Collections select one variant per route, and can extend other collections.
The admin API changes the selected collection, the global delay and the
custom route variants while the server is running.

Configuration can be provided via flags, MOCKS_* environment variables, or a
mocks.config.yaml file in the current directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCommand(info),
		newValidateCommand(),
		newVersionCommand(info),
	)
	return root
}

// Execute runs the mocks command and exits with a non-zero code on error.
func Execute(info BuildInfo) {
	if err := NewRootCommand(info).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
