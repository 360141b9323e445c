package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrWong99/hexforge/internal/emit"
)

func newValidateCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "validate <assets-path>",
		Short: "Check every .ron file below a directory",
		Long: `Validate walks assets-path and checks each .ron file for balanced
delimiters, the required id and model_path fields, sanitized file names and
a corruption_band within 1..5. Every problem is printed; the command fails
when any is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				problems, err := emit.ValidateTree(ctx, args[0], workers)
				if err != nil {
					return err
				}
				for _, p := range problems {
					fmt.Fprintln(a.stdout, p.Error())
				}
				if len(problems) > 0 {
					return fmt.Errorf("%d problems in %s", len(problems), args[0])
				}
				fmt.Fprintln(a.stdout, "ok")
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", emit.DefaultValidateWorkers, "files validated concurrently")
	return cmd
}
