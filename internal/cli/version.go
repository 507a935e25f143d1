package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/specgate/internal/build"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for specgate",
	Example: `  # Show version info
  specgate version

  # Plain output (for scripts)
  specgate version --plain`,
	Args: positional(cobra.NoArgs),
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		printVersion(cmd.OutOrStdout(), plain)
	},
}

func init() {
	versionCmd.GroupID = GroupConfiguration
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

func printVersion(out io.Writer, plain bool) {
	if plain {
		fmt.Fprintf(out, "specgate %s\n", build.Version)
		fmt.Fprintf(out, "commit: %s\n", build.Commit)
		fmt.Fprintf(out, "built: %s\n", build.BuildDate)
		fmt.Fprintf(out, "go: %s\n", runtime.Version())
		fmt.Fprintf(out, "platform: %s\n", build.Platform())
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan("specgate"), build.Short())
	if build.IsDevBuild() {
		fmt.Fprintln(out, dim("  development build"))
	}
	fmt.Fprintf(out, "  %s %s\n", dim("Built:   "), build.BuildDate)
	fmt.Fprintf(out, "  %s %s\n", dim("Go:      "), runtime.Version())
	fmt.Fprintf(out, "  %s %s\n", dim("Platform:"), build.Platform())
}
