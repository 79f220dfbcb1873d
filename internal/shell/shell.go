// Package shell abstracts external process invocation behind a small
// synchronous interface so provisioning logic can be tested with a fake
// runner instead of real az/kubectl binaries.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the outcome of a single process invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the process exited with status zero.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Text returns stdout with surrounding whitespace trimmed, matching the
// shape of `az ... -o tsv` output.
func (r Result) Text() string {
	return strings.TrimSpace(r.Stdout)
}

// ErrText returns stderr trimmed, or a placeholder when the process produced
// no diagnostics.
func (r Result) ErrText() string {
	s := strings.TrimSpace(r.Stderr)
	if s == "" {
		return "unknown error"
	}
	return s
}

// Runner executes an external command and reports its exit code and output.
// A non-zero exit code is not an error at this layer; callers decide how to
// treat command failure. The returned error covers invocation problems only
// (binary missing, context cancelled).
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (e *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	// #nosec G204 -- argv is assembled from validated configuration, not raw user input
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("running %s: %w", name, err)
	}

	return res, nil
}
