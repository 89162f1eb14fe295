package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/jmylchreest/palettenode/internal/security"
)

const (
	// DefaultMaxOutput caps what a json-stdio plugin may print on stdout.
	DefaultMaxOutput int64 = 16 << 20

	// maxStderr caps the stderr kept for error messages.
	maxStderr = 64 << 10

	// defaultWaitDelay bounds how long a killed plugin may hold its pipes open.
	defaultWaitDelay = 2 * time.Second
)

// ProcessRunner runs a plugin binary to completion.
type ProcessRunner interface {
	// Run executes path with args, feeding stdin, and returns what the plugin
	// printed on stdout and stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// ExecRunner runs plugins with os/exec. The process is killed when ctx ends.
type ExecRunner struct {
	// MaxOutput caps stdout. Output past the cap fails the run.
	MaxOutput int64
	// WaitDelay is how long to wait for pipes after the process is killed.
	WaitDelay time.Duration
}

// NewExecRunner creates an ExecRunner with the default limits.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{MaxOutput: DefaultMaxOutput, WaitDelay: defaultWaitDelay}
}

// Run implements ProcessRunner.
func (r *ExecRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	maxOutput := r.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &cappedWriter{w: &stdoutBuf, remaining: maxOutput}
	stderr := &cappedWriter{w: &stderrBuf, remaining: maxStderr}

	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 - plugin path validated by caller
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	switch {
	case err != nil && ctx.Err() != nil:
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), fmt.Errorf("plugin %s stopped: %w", filepath.Base(path), ctx.Err())
	case err != nil:
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
	case stdout.exceeded:
		return nil, stderrBuf.Bytes(), fmt.Errorf("plugin output over %d bytes: %w", maxOutput, security.ErrLimitExceeded)
	}
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), nil
}

// cappedWriter keeps the first remaining bytes and drops the rest. Writes
// never fail so the plugin is not blocked on a full pipe.
type cappedWriter struct {
	w         io.Writer
	remaining int64
	exceeded  bool
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	keep := p
	if int64(len(keep)) > c.remaining {
		keep = keep[:c.remaining]
		c.exceeded = true
	}
	if len(keep) > 0 {
		if _, err := c.w.Write(keep); err != nil {
			return 0, err
		}
		c.remaining -= int64(len(keep))
	}
	return len(p), nil
}
