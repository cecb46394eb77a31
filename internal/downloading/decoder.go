package downloading

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"nropster/internal/config"
	"nropster/internal/services"
)

// Decoder starts the local decode step that turns the raw recording stream
// into a playable file at outputPath.
type Decoder interface {
	Start(ctx context.Context, outputPath string) (DecodeSession, error)
}

// DecodeSession receives raw bytes. Finish signals end of input and waits for
// the decoder; Abort stops it and discards the result.
type DecodeSession interface {
	io.Writer
	Finish() error
	Abort()
}

// CommandDecoder runs an external decoder that reads the stream on stdin.
type CommandDecoder struct {
	Command string
	Args    []string
	MAK     string
}

// NewCommandDecoder builds a decoder from configuration.
func NewCommandDecoder(cfg config.Decoder, mak string) *CommandDecoder {
	return &CommandDecoder{Command: cfg.Command, Args: cfg.Args, MAK: mak}
}

// Available reports whether the decoder binary can be resolved.
func (d *CommandDecoder) Available() error {
	if _, err := exec.LookPath(d.Command); err != nil {
		return fmt.Errorf("decoder %q not found: %w", d.Command, err)
	}
	return nil
}

func (d *CommandDecoder) args(outputPath string) []string {
	out := make([]string, 0, len(d.Args))
	for _, arg := range d.Args {
		arg = strings.ReplaceAll(arg, config.TokenOutput, outputPath)
		arg = strings.ReplaceAll(arg, config.TokenMAK, d.MAK)
		out = append(out, arg)
	}
	return out
}

// Start launches the decoder process.
func (d *CommandDecoder) Start(ctx context.Context, outputPath string) (DecodeSession, error) {
	cmd := exec.CommandContext(ctx, d.Command, d.args(outputPath)...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "decoder stdin", "", err)
	}
	session := &commandSession{cmd: cmd, stdin: stdin, name: d.Command}
	cmd.Stdout = &session.output
	cmd.Stderr = &session.output
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "start decoder", d.Command, err)
	}
	return session, nil
}

type commandSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	name   string
	output tailBuffer
	once   sync.Once
	err    error
}

func (s *commandSession) Write(p []byte) (int, error) {
	n, err := s.stdin.Write(p)
	if err != nil {
		return n, fmt.Errorf("write to %s: %w", s.name, err)
	}
	return n, nil
}

func (s *commandSession) Finish() error {
	s.once.Do(func() {
		_ = s.stdin.Close()
		if err := s.cmd.Wait(); err != nil {
			detail := strings.TrimSpace(s.output.String())
			s.err = services.Wrap(services.ErrExternalTool, "fetch", "decoder", detail, err)
		}
	})
	return s.err
}

func (s *commandSession) Abort() {
	s.once.Do(func() {
		_ = s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
		s.err = fmt.Errorf("%s aborted", s.name)
	})
}

// tailBuffer keeps the last few KiB of process output for error messages.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

const tailLimit = 4 << 10

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if extra := t.buf.Len() - tailLimit; extra > 0 {
		t.buf.Next(extra)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
