package main

import (
	"maps"

	"github.com/spf13/cobra"

	tonic "github.com/nmichlo/tonic-config"
)

func showCmd() *cobra.Command {
	var (
		noColor bool
		args    []string
	)

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a configuration file as a sorted listing",
		Long: `Show loads a configuration file, merges any overrides given with --set,
and prints one line per key ordered by namespace then parameter.`,
		Example: `  tonic show train.toml
  tonic show train.toml --set train.lr=0.5 --set '@train.data=loader'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			flat, err := tonic.LoadFile(files[0])
			if err != nil {
				return err
			}
			if err := applyOverrides(flat, args); err != nil {
				return err
			}
			return tonic.PrettyFlat(cmd.OutOrStdout(), flat, tonic.PrettyOptions{Color: !noColor})
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringArrayVar(&args, "set", nil, "Override a key (key=value), may be repeated")

	return cmd
}

// applyOverrides merges "key=value" overrides into flat.
func applyOverrides(flat tonic.FlatConfig, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	cliArgs := make([]string, len(overrides))
	for i, override := range overrides {
		cliArgs[i] = "--" + override
	}
	parsed, err := tonic.ParseArgs(cliArgs)
	if err != nil {
		return err
	}
	maps.Copy(flat, parsed)
	return nil
}
