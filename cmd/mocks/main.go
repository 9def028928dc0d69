// mocks CLI - Command-line interface for the mocks server
package main

import "github.com/mocks-server/main/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Execute(cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate})
}
