package encoding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"nropster/internal/config"
	"nropster/internal/fileutil"
	"nropster/internal/logging"
	"nropster/internal/services"
)

type recordedRun struct {
	name string
	args []string
}

func newTestTranscoder(run CommandRunner) *Transcoder {
	cfg := config.Transcoder{
		Command:   "ffmpeg",
		Args:      []string{"-i", config.TokenInput, "-target", "ntsc-dv", config.TokenOutput},
		Extension: "dv",
	}
	return NewTranscoder(cfg, logging.NewNop()).WithRunner(run)
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	input := filepath.Join(dir, "Show-One 2024-01-02-030405.mpg")
	if err := os.WriteFile(input, []byte("mpeg"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return input
}

// outputWriter emulates a transcoder by writing its last argument.
func outputWriter(calls *[]recordedRun, runErr error) CommandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedRun{name: name, args: args})
		if err := os.WriteFile(args[len(args)-1], []byte("dv"), 0o644); err != nil {
			return err
		}
		return runErr
	}
}

func TestEncodeSubstitutesTokensAndPromotes(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "out", "Show-One.dv")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatal(err)
	}

	var calls []recordedRun
	tr := newTestTranscoder(outputWriter(&calls, nil))
	if _, err := tr.Encode(context.Background(), input, output); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(calls) != 1 || calls[0].name != "ffmpeg" {
		t.Fatalf("unexpected runs %+v", calls)
	}
	want := []string{"-i", input, "-target", "ntsc-dv", fileutil.PartialPath(output)}
	if !slices.Equal(calls[0].args, want) {
		t.Fatalf("args = %v, want %v", calls[0].args, want)
	}
	if !fileutil.Exists(output) {
		t.Fatal("expected promoted output")
	}
	if fileutil.Exists(fileutil.PartialPath(output)) {
		t.Fatal("partial output left behind")
	}
	if fileutil.Exists(input) {
		t.Fatal("expected input to be removed after success")
	}
}

func TestEncodeAcceptsOutputDespiteExitError(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "Show-One.dv")

	var calls []recordedRun
	tr := newTestTranscoder(outputWriter(&calls, errors.New("exit status 1")))
	if _, err := tr.Encode(context.Background(), input, output); err != nil {
		t.Fatalf("expected success when output exists, got %v", err)
	}
	if !fileutil.Exists(output) {
		t.Fatal("expected output to be promoted")
	}
}

func TestEncodeFailsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "Show-One.dv")

	tr := newTestTranscoder(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	_, err := tr.Encode(context.Background(), input, output)
	if !errors.Is(err, services.ErrTranscodeFailed) {
		t.Fatalf("expected ErrTranscodeFailed, got %v", err)
	}
	if services.Classify(err) != services.KindFatal {
		t.Fatalf("transcode failure must be fatal, got %v", services.Classify(err))
	}
	if !fileutil.Exists(input) {
		t.Fatal("input must survive a failed transcode")
	}
	if fileutil.Exists(output) {
		t.Fatal("no output may be promoted on failure")
	}
}

func TestEncodeClearsStaleOutputFirst(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "Show-One.dv")
	if err := os.WriteFile(fileutil.PartialPath(output), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A runner that produces nothing must not be credited with the stale file.
	tr := newTestTranscoder(func(context.Context, string, ...string) error { return nil })
	if _, err := tr.Encode(context.Background(), input, output); err == nil {
		t.Fatal("expected failure when only a stale partial exists")
	}
	if fileutil.Exists(output) {
		t.Fatal("stale partial was promoted")
	}
}

func TestEncodeInterrupted(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "Show-One.dv")

	ctx, cancel := context.WithCancel(context.Background())
	var calls []recordedRun
	run := outputWriter(&calls, nil)
	tr := newTestTranscoder(func(ctx context.Context, name string, args ...string) error {
		err := run(ctx, name, args...)
		cancel()
		return err
	})
	_, err := tr.Encode(ctx, input, output)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if fileutil.Exists(output) || fileutil.Exists(fileutil.PartialPath(output)) {
		t.Fatal("interrupted transcode must leave no output")
	}
	if !fileutil.Exists(input) {
		t.Fatal("input must survive an interrupted transcode")
	}
}

func TestEncodeReportsElapsed(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "Show-One.dv")

	var calls []recordedRun
	tr := newTestTranscoder(outputWriter(&calls, nil))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(90 * time.Second)}
	tr.now = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}
	elapsed, err := tr.Encode(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if elapsed != 90*time.Second {
		t.Fatalf("elapsed = %v", elapsed)
	}
}

func TestDefaultCommandRunnerReportsOutputTail(t *testing.T) {
	err := defaultCommandRunner(context.Background(), "sh", "-c", "echo first; echo last >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "last") {
		t.Fatalf("expected output tail in %q", got)
	}
	if err := defaultCommandRunner(context.Background(), "sh", "-c", "exit 0"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
