package main

import (
	"fmt"

	"github.com/spf13/cobra"

	tonic "github.com/nmichlo/tonic-config"
)

func convertCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a configuration file between TOML, JSON and YAML",
		Long: `Convert reads a configuration file and writes it in another format.
Nested tables are flattened to dotted keys. Without an output file the result
is written to stdout in the format given by --format.`,
		Example: `  tonic convert train.toml train.yaml
  tonic convert train.yaml --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flat, err := tonic.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := flat.Validate(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if len(args) == 2 {
				if err := tonic.SaveFile(args[1], flat); err != nil {
					return err
				}
				success(cmd, "wrote %d keys to %s", len(flat), args[1])
				return nil
			}

			data, err := tonic.Marshal(flat, tonic.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(tonic.FormatTOML), "Output format when writing to stdout (toml, json, yaml)")

	return cmd
}
