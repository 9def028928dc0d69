package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mocks-server/main/pkg/cli/internal/output"
)

// VersionOutput is the output of "mocks version --json".
type VersionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// resolve completes the injected build info with what the Go toolchain
// embedded in the binary, for builds made without ldflags.
func (info BuildInfo) resolve() VersionOutput {
	out := VersionOutput{
		Version: info.Version,
		Commit:  info.Commit,
		Date:    info.BuildDate,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out.withDefaults()
	}
	if out.Version == "" && bi.Main.Version != "(devel)" {
		out.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && out.Commit == "":
			out.Commit = s.Value
		case s.Key == "vcs.time" && out.Date == "":
			out.Date = s.Value
		}
	}
	return out.withDefaults()
}

func (v VersionOutput) withDefaults() VersionOutput {
	if v.Version == "" {
		v.Version = "dev"
	}
	if v.Commit == "" {
		v.Commit = "none"
	}
	if v.Date == "" {
		v.Date = "unknown"
	}
	return v
}

// String formats the version as "v1.2.3", leaving "dev" as is.
func (v VersionOutput) String() string {
	if v.Version == "dev" || strings.HasPrefix(v.Version, "v") {
		return v.Version
	}
	return "v" + v.Version
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show mocks version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := info.resolve()
			if jsonOutput {
				return output.JSON(cmd.OutOrStdout(), v)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "mocks %s (%s, %s)\n", v, v.Commit, v.Date)
			fmt.Fprintf(w, "%s %s/%s\n", v.Go, v.OS, v.Arch)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information in JSON format")
	return cmd
}
