package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: noServices,
	Run: func(cmd *cobra.Command, _ []string) {
		v := resolveVersion(version, debug.ReadBuildInfo)
		if versionShort {
			cmd.Println(v)
			return
		}
		cmd.Printf("sercha-library version %s (%s %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// resolveVersion prefers the ldflags version. A dev build installed with
// "go install module@version" still reports the module version.
func resolveVersion(ldflags string, buildInfo func() (*debug.BuildInfo, bool)) string {
	if ldflags != "dev" && ldflags != "" {
		return ldflags
	}
	if info, ok := buildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
