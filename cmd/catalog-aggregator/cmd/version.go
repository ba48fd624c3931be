package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

func versionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				return
			}
			info, _ := debug.ReadBuildInfo()
			writeVersion(cmd.OutOrStdout(), Version, info)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}

// writeVersion prints the version with the toolchain and, when the binary
// was built from a checkout, the VCS revision.
func writeVersion(w io.Writer, version string, info *debug.BuildInfo) {
	fmt.Fprintf(w, "catalog-aggregator %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if info == nil {
		return
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			fmt.Fprintln(w, "revision:", s.Value)
		}
	}
}
