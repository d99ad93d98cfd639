package collector

import (
	"bytes"
	"context"
	"os/exec"

	"codeberg.org/mutker/zensensors/internal/errors"
)

type execRunner struct{}

// ExecRunner runs commands found on PATH.
func ExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (CommandOutput, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		return out, err
	}

	return out, nil
}
