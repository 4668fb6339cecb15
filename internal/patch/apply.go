// Package patch applies unified diffs to a workspace directory.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ApplyError reports that the apply tool rejected the patch. Its diagnostic
// comes from the tool's stderr, falling back to stdout, falling back to a
// generic message.
type ApplyError struct {
	Diagnostic string
}

func (e *ApplyError) Error() string {
	return e.Diagnostic
}

// Apply applies the given patch to workDir using git apply relative to the
// workspace root. The patch is either a path to an existing diff file or
// literal unified-diff text; literal text goes through a temporary file that
// is removed on every exit path. Whitespace-only discrepancies in context
// lines do not block application.
func Apply(workDir, patch string) error {
	diffFile, cleanup, err := resolvePatch(patch)
	if err != nil {
		return err
	}
	defer cleanup()

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("git", "apply", "--whitespace=nowarn", diffFile)
	cmd.Dir = workDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("failed to run git apply: %w", err)
	}

	diag := strings.TrimSpace(stderr.String())
	if diag == "" {
		diag = strings.TrimSpace(stdout.String())
	}
	if diag == "" {
		diag = "patch apply failed"
	}
	return &ApplyError{Diagnostic: diag}
}

// resolvePatch returns the absolute path of the diff file to apply and a
// cleanup function. A patch argument naming an existing regular file is used
// directly; anything else is treated as literal diff content.
func resolvePatch(patch string) (string, func(), error) {
	noop := func() {}

	if info, err := os.Stat(patch); err == nil && info.Mode().IsRegular() {
		abs, err := filepath.Abs(patch)
		if err != nil {
			return "", noop, fmt.Errorf("failed to resolve patch path: %w", err)
		}
		return abs, noop, nil
	}

	tmp, err := os.CreateTemp("", "verdict-patch-*.diff")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp patch file: %w", err)
	}

	if _, err := tmp.WriteString(patch); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("failed to write temp patch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("failed to close temp patch file: %w", err)
	}

	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}
