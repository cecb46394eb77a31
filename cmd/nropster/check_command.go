package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nropster/internal/catalog"
	"nropster/internal/deps"
	"nropster/internal/logging"
	"nropster/internal/preflight"
	"nropster/internal/report"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, external programs, and recorder access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cfg)
			if !offline {
				if err := cfg.ValidateDevice(); err != nil {
					results = append(results, preflight.Result{Name: "Recorder", Detail: err.Error()})
				} else {
					client, err := catalog.NewClient(cfg.Device, logging.NewNop())
					if err != nil {
						results = append(results, preflight.Result{Name: "Recorder", Detail: err.Error()})
					} else {
						results = append(results, preflight.CheckRecorder(cmd.Context(), client))
					}
				}
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{result.Name, passLabel(result.Passed), result.Detail})
			}
			fmt.Fprintln(out, report.RenderTable([]string{"Check", "Result", "Detail"}, rows))

			statuses := preflight.CheckSystemDeps(cfg)
			depRows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Path
				if !status.Available {
					detail = status.Detail
				}
				depRows = append(depRows, []string{status.Name, status.Command, yesNo(status.Available), detail})
			}
			fmt.Fprintln(out, report.RenderTable([]string{"Program", "Command", "Available", "Detail"}, depRows))

			var problems []string
			for _, result := range preflight.Failed(results) {
				problems = append(problems, result.Name)
			}
			for _, status := range deps.MissingRequired(statuses) {
				problems = append(problems, status.Name)
			}
			if len(problems) > 0 {
				return fmt.Errorf("checks failed: %s", strings.Join(problems, ", "))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip contacting the recorder")
	return cmd
}

func passLabel(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
