package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nropster/internal/report"
	"nropster/internal/selection"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var selFlags selectionFlags
	var cached bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which kept recordings a run would fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			selFlags.apply(cmd, cfg)
			logger, err := ctx.consoleLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := selection.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}
			recordings, err := ctx.loadRecordings(cmd.Context(), cached, logger)
			if err != nil {
				return err
			}

			plan := selection.Classify(recordings, opts, logger)
			out := cmd.OutOrStdout()
			fmt.Fprint(out, report.Plan(plan))
			fmt.Fprintf(out, "%d to fetch\n", len(plan.Fetchable()))
			return nil
		},
	}

	selFlags.register(cmd)
	cmd.Flags().BoolVar(&cached, "cached", false, "Use the listing saved by the previous run instead of querying the recorder")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the kept recordings on the recorder",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.consoleLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			recordings, err := ctx.loadRecordings(cmd.Context(), cached, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			listing := report.Recordings(recordings)
			if listing == "" {
				fmt.Fprintln(out, "No kept recordings.")
				return nil
			}
			fmt.Fprint(out, listing)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Use the listing saved by the previous run instead of querying the recorder")
	return cmd
}
