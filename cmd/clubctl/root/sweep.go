package root

import (
	"encoding/json"
	"fmt"
	"strings"

	"upvote-club/services"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "sweep <name>",
		Short:     "Run one sweep pass now",
		Long:      "Run one sweep pass now. Names: " + strings.Join(services.SweepNames, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: services.SweepNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := engine.Sweeper.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(out, "%s: %d done, %d skipped, %d failed\n", report.Sweep, report.Done, report.Skipped, report.Failed)
			for _, it := range report.Items {
				line := fmt.Sprintf("  %-36s %s", it.TaskID, it.Outcome)
				if it.Refund != nil {
					line += " refund=" + it.Refund.String()
				}
				if it.Drafted > 0 {
					line += fmt.Sprintf(" drafted=%d", it.Drafted)
				}
				if it.Error != "" {
					line += " error=" + it.Error
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}
