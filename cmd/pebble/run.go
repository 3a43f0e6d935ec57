package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pebble/internal/harness"
)

func runCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print its trace",
		Long: `Run a scenario against a fresh boundary and print every value it observed.

The command fails if any step's expectation does not hold.

Examples:
  pebble run scenarios/counter.yaml
  pebble run scenarios/counter.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			s, err := harness.LoadScenario(args[0])
			if err != nil {
				return err
			}

			result, err := harness.Run(s, harness.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printTrace(cmd.OutOrStdout(), result)
			}
			return result.Err()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func printTrace(w io.Writer, r *harness.Result) {
	fmt.Fprintf(w, "%s (catalog %s)\n\n", r.Scenario, r.Catalog)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range r.Trace {
		outcome := e.Error
		if outcome == "" {
			data, _ := json.Marshal(e.Value)
			outcome = string(data)
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", e.Seq, e.Op, e.Cell, outcome)
	}
	tw.Flush()
	fmt.Fprintln(w)

	if r.Pass {
		success(w, "%d steps passed", len(r.Trace))
		return
	}
	for _, f := range r.Failures {
		warn(w, "%s", f)
	}
}
