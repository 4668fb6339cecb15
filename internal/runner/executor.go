package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Status classifies how a test run terminated.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusTimeout Status = "timeout"
)

type Config struct {
	Dir     string // working directory for the command
	Command string
	Args    []string
	Timeout time.Duration // zero means no timeout
	Verbose bool
}

// Outcome captures one complete test run. Stdout and Stderr hold the full
// streams, never truncated, since the evaluation report embeds them.
type Outcome struct {
	Passed        bool
	ExitCode      int
	Stdout        string
	Stderr        string
	Status        Status
	ExecutionTime int64 // milliseconds
}

// Execute runs the configured command with config.Dir as its working
// directory and waits for it to exit. A non-zero exit code is a normal
// Outcome, not an error; an error is returned only when the command cannot
// be spawned at all (missing binary, bad directory), so callers can tell a
// failing test suite from a broken environment.
func Execute(config *Config) (*Outcome, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	cmd.Dir = config.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if config.Verbose {
		PrintPreExecution(config)
	}

	startTime := time.Now()
	err := cmd.Run()
	executionTime := time.Since(startTime).Milliseconds()

	status := StatusSuccess
	exitCode := 0

	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			// Distinct marker instead of hanging forever; the process was
			// killed, so there is no meaningful exit code.
			status = StatusTimeout
			exitCode = -1
		default:
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return nil, fmt.Errorf("failed to start command %s: %w", config.Command, err)
			}
			status = StatusFailure
			exitCode = exitErr.ExitCode()
		}
	}

	outcome := &Outcome{
		Passed:        exitCode == 0,
		ExitCode:      exitCode,
		Stdout:        stdout.String(),
		Stderr:        stderr.String(),
		Status:        status,
		ExecutionTime: executionTime,
	}

	if config.Verbose {
		PrintPostExecution(outcome)
	}

	return outcome, nil
}
