package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"nropster/internal/config"
	"nropster/internal/fileutil"
	"nropster/internal/logging"
	"nropster/internal/services"
)

// CommandRunner executes an external command to completion.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Transcoder converts a fetched recording into the edit format by running an
// external command against a partial output path. The run counts as a
// success exactly when the partial output exists afterwards.
type Transcoder struct {
	command string
	args    []string
	run     CommandRunner
	logger  *slog.Logger
	now     func() time.Time
}

// NewTranscoder builds a transcoder from configuration.
func NewTranscoder(cfg config.Transcoder, logger *slog.Logger) *Transcoder {
	return &Transcoder{
		command: cfg.Command,
		args:    cfg.Args,
		run:     defaultCommandRunner,
		logger:  logging.NewComponentLogger(logger, "transcoder"),
		now:     time.Now,
	}
}

// WithRunner replaces the process runner.
func (t *Transcoder) WithRunner(run CommandRunner) *Transcoder {
	if run != nil {
		t.run = run
	}
	return t
}

// Available reports whether the transcoder binary can be resolved.
func (t *Transcoder) Available() error {
	if _, err := exec.LookPath(t.command); err != nil {
		return fmt.Errorf("transcoder %q not found: %w", t.command, err)
	}
	return nil
}

func (t *Transcoder) commandArgs(input, output string) []string {
	out := make([]string, 0, len(t.args))
	for _, arg := range t.args {
		arg = strings.ReplaceAll(arg, config.TokenInput, input)
		arg = strings.ReplaceAll(arg, config.TokenOutput, output)
		out = append(out, arg)
	}
	return out
}

// Encode transcodes input into output. On success the output is promoted,
// the input deleted, and the elapsed time returned. On failure the input is
// left untouched and nothing is promoted.
func (t *Transcoder) Encode(ctx context.Context, input, output string) (time.Duration, error) {
	start := t.now()
	partial := fileutil.PartialPath(output)
	logger := logging.WithContext(ctx, t.logger)

	if err := fileutil.ClearStale(output); err != nil {
		return 0, services.Wrap(services.ErrTranscodeFailed, "transcode", "clear stale output", "", err)
	}

	runErr := t.run(ctx, t.command, t.commandArgs(input, partial)...)

	if ctxErr := ctx.Err(); ctxErr != nil {
		_ = fileutil.Remove(partial)
		return 0, services.Wrap(services.ErrTranscodeFailed, "transcode", "run", "interrupted", ctxErr)
	}
	if !fileutil.Exists(partial) {
		return 0, services.Wrap(services.ErrTranscodeFailed, "transcode", "run", "no output produced", runErr)
	}
	if runErr != nil {
		logger.Warn("transcoder reported an error but produced output; keeping it",
			logging.Error(runErr),
			logging.String(logging.FieldEventType, "transcode_exit_ignored"),
		)
	}

	if err := fileutil.Promote(partial, output); err != nil {
		_ = fileutil.Remove(partial)
		return 0, services.Wrap(services.ErrTranscodeFailed, "transcode", "promote", "", err)
	}
	if err := fileutil.Remove(input); err != nil {
		logger.Warn("transcoded input not removed",
			logging.String("path", input),
			logging.Error(err),
		)
	}
	return t.now().Sub(start), nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, lastLines(string(output), 5))
	}
	return nil
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
