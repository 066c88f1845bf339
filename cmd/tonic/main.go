// FILE: tonic/cmd/tonic/main.go
package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.Red.Sprint("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tonic",
		Short: "Inspect and convert tonic configuration files",
		Long: `tonic works with the flat configuration files read by the tonic
configuration engine. Keys have the form "namespace.param", "*.param" for
global values, or "@namespace.param" for instanced values.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		checkCmd(),
		showCmd(),
		convertCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.Green.Sprint("✓"), fmt.Sprintf(format, args...))
}
