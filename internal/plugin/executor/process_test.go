package executor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/palettenode/internal/security"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	path := writePlugin(t, "#!/bin/sh\ncat\necho warn >&2\n")

	stdout, stderr, err := NewExecRunner().Run(context.Background(), path, nil, strings.NewReader("batch"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(stdout) != "batch" {
		t.Errorf("stdout = %q, want %q", stdout, "batch")
	}
	if strings.TrimSpace(string(stderr)) != "warn" {
		t.Errorf("stderr = %q, want warn", stderr)
	}
}

func TestExecRunnerKeepsStderrOnFailure(t *testing.T) {
	path := writePlugin(t, "#!/bin/sh\necho boom >&2\nexit 2\n")

	_, stderr, err := NewExecRunner().Run(context.Background(), path, nil, nil)
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if !strings.Contains(string(stderr), "boom") {
		t.Errorf("stderr = %q, want boom", stderr)
	}
}

func TestExecRunnerCapsOutput(t *testing.T) {
	path := writePlugin(t, "#!/bin/sh\nhead -c 4096 /dev/zero\n")

	runner := &ExecRunner{MaxOutput: 100}
	_, _, err := runner.Run(context.Background(), path, nil, nil)
	if !errors.Is(err, security.ErrLimitExceeded) {
		t.Fatalf("Run() error = %v, want ErrLimitExceeded", err)
	}
}

func TestExecRunnerStopsOnDeadline(t *testing.T) {
	path := writePlugin(t, "#!/bin/sh\nexec sleep 10\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := NewExecRunner().Run(ctx, path, nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %s after the deadline", elapsed)
	}
}

func TestCappedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &cappedWriter{w: &buf, remaining: 5}

	for _, chunk := range []string{"abc", "defg", "hij"} {
		n, err := w.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if buf.String() != "abcde" {
		t.Errorf("kept %q, want %q", buf.String(), "abcde")
	}
	if !w.exceeded {
		t.Error("exceeded = false, want true")
	}
}
