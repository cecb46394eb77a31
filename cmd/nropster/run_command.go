package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nropster/internal/config"
	"nropster/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var selFlags selectionFlags
	var handoff string
	var cached bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch and transcode every selected kept recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			selFlags.apply(cmd, cfg)
			if cmd.Flags().Changed("handoff") {
				cfg.Workflow.Handoff = strings.ToLower(strings.TrimSpace(handoff))
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context(), cfg, runner.Options{
				Cached: cached,
				Out:    cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if result.Errored > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d recordings failed; see the log at %s\n", result.Errored, result.Items, cfg.LogPath())
				if result.LastError != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "last error: %s\n", result.LastError)
				}
			}
			return nil
		},
	}

	selFlags.register(cmd)
	cmd.Flags().StringVar(&handoff, "handoff", "", fmt.Sprintf("Stage hand-off mode (%s or %s)", config.HandoffSignal, config.HandoffPoll))
	cmd.Flags().BoolVar(&cached, "cached", false, "Use the listing saved by the previous run instead of querying the recorder")
	return cmd
}
