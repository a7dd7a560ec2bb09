package services

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// CommandOutput holds the captured streams of an external process.
type CommandOutput struct {
	Stdout []byte
	Stderr []byte
}

// StderrText returns the trimmed diagnostic stream.
func (o CommandOutput) StderrText() string {
	return strings.TrimSpace(string(o.Stderr))
}

// CommandRunner executes an external program and captures both output streams.
// A non-nil error means the process could not start or exited unsuccessfully;
// the captured output is returned either way.
type CommandRunner func(ctx context.Context, name string, args ...string) (CommandOutput, error)

// ExecCommand is the default CommandRunner backed by os/exec.
func ExecCommand(ctx context.Context, name string, args ...string) (CommandOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return CommandOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}

// RunnerOrDefault returns runner, falling back to ExecCommand when nil.
func RunnerOrDefault(runner CommandRunner) CommandRunner {
	if runner == nil {
		return ExecCommand
	}
	return runner
}
