package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/internal/harness"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Check scenario files against the schema",
		Long: `Check scenario files against the scenario schema without running them.

Examples:
  pebble validate scenarios/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err == nil {
					err = harness.Validate(data)
				}
				if err != nil {
					warn(cmd.ErrOrStderr(), "%s", path)
					errors.Fprint(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				success(cmd.OutOrStdout(), "%s", path)
			}
			if failed > 0 {
				return errors.Newf(errors.CategoryScenario, "%d of %d scenario files are invalid", failed, len(args))
			}
			return nil
		},
	}
}
