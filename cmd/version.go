// Package cmd contains cobra commands and helpers shared by the datarepo binaries.
package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Version returns a `version` command to be added to any cobra (root) command.
// It prints the vcs revision and time the binary was built from.
func Version(name string) *cobra.Command {
	name = strings.TrimSpace(name)

	short := "Print version"
	prefix := "version:"

	if name != "" {
		short = "Print " + name + " version"
		prefix = name + " version:"
	}

	return &cobra.Command{
		Use:                   "version",
		Short:                 short,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			info := ReadBuildInfo()

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s from %s (%s)\n", prefix, info.Revision, info.Time, info.GoVersion)
		},
	}
}

// BuildInfo is the version information embedded by `go build`.
type BuildInfo struct {
	Revision  string
	Time      string
	GoVersion string
}

// ReadBuildInfo returns the last commit hash and commit timestamp of the binary.
// If the binary contains uncommitted code, or the information is not available,
// e.g. for `go run` and `go test`, the revision is `@latest` and the time is now.
func ReadBuildInfo() BuildInfo {
	var (
		info     = BuildInfo{GoVersion: "unknown"}
		modified bool
	)

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion

		for _, setting := range bi.Settings { // called from a Go test info.Settings are always empty: []
			switch setting.Key {
			case "vcs.revision":
				info.Revision = setting.Value
			case "vcs.time":
				info.Time = setting.Value
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}
	}

	if modified || info.Revision == "" {
		info.Revision = "@latest"
		info.Time = time.Now().UTC().Format(time.RFC3339)
	}

	return info
}
