package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/autismart/autismart/internal/catalog"
)

// Overridden with -ldflags "-X github.com/autismart/autismart/cmd.version=v1.2.3".
var version = "(devel)"

func init() {
	if version != "(devel)" {
		return
	}
	// go install records the module version in the binary.
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, built-in questionnaire version and Go runtime",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autismart %s (questionnaire v%d, %s %s/%s)\n",
			version, catalog.Default().Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
