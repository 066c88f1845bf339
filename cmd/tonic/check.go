package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	tonic "github.com/nmichlo/tonic-config"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate the keys of configuration files",
		Long: `Check loads every file and validates each key against the key grammar.
All invalid keys of all files are reported together.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				flat, err := tonic.LoadFile(path)
				if err == nil {
					err = flat.Validate()
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				success(cmd, "%s: %d keys", path, len(flat))
			}
			return errors.Join(errs...)
		},
	}
	return cmd
}
