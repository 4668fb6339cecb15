// Package evaluate orchestrates one full patch evaluation: baseline test
// run against the original program, patch application inside an isolated
// workspace, after run, verdict, report.
package evaluate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verdict-ci/verdict/internal/output"
	"github.com/verdict-ci/verdict/internal/patch"
	"github.com/verdict-ci/verdict/internal/runner"
	"github.com/verdict-ci/verdict/internal/workspace"
)

// ErrProgramNotFound indicates the program directory is missing or not a
// directory. It is raised before any workspace is created.
var ErrProgramNotFound = errors.New("program directory not found")

// DefaultTestCommand is used when a request carries no override.
var DefaultTestCommand = []string{"python", "-m", "pytest", "-q"}

// Request describes one evaluation. It is not mutated by Evaluate.
type Request struct {
	ProgramDir    string
	Patch         string   // diff file path or literal diff text
	TestCommand   []string // optional override of the evaluator default
	ReportPath    string   // optional; report is persisted there when set
	KeepWorkspace bool
	Timeout       time.Duration // optional per test-run bound
	Verbose       bool

	// Score awarded in full when the verdict is repaired, zero otherwise.
	// Nil means no scoring.
	Score *decimal.Decimal

	// Context is arbitrary metadata attached to the report.
	Context any
}

// Evaluator runs patch evaluations. The zero value is not usable; construct
// with New. Evaluators are stateless between calls and safe for concurrent
// use, since every evaluation owns its own workspace.
type Evaluator struct {
	testCommand []string
}

func New(testCommand []string) *Evaluator {
	if len(testCommand) == 0 {
		testCommand = DefaultTestCommand
	}
	return &Evaluator{testCommand: testCommand}
}

// Evaluate performs one evaluation end to end and returns the assembled
// report. Errors escape only for malformed input (missing program
// directory), a baseline run that cannot be spawned, or workspace creation
// failure; everything inside the apply/after-run window is folded into a
// patch_failed report instead. When report persistence fails, the report is
// returned together with the error.
func (e *Evaluator) Evaluate(req *Request) (*output.Report, error) {
	sourceDir, err := filepath.Abs(req.ProgramDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, req.ProgramDir)
	}
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, sourceDir)
	}

	command := req.TestCommand
	if len(command) == 0 {
		command = e.testCommand
	}

	// Baseline run happens in the original directory, never the workspace.
	// A spawn failure here is fatal: a baseline that cannot run makes the
	// whole evaluation meaningless.
	before, err := runTests(sourceDir, command, req)
	if err != nil {
		return nil, fmt.Errorf("baseline run failed: %w", err)
	}

	workDir, err := workspace.Create(sourceDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if !req.KeepWorkspace {
			_ = workspace.Remove(workDir)
		}
	}()

	patchApplied, after, patchErr := e.applyAndRerun(workDir, command, req)

	status := Verdict(before, after, patchApplied)
	report := buildReport(sourceDir, workDir, before, after, patchApplied, patchErr, status, req)

	if req.ReportPath != "" {
		if err := report.Write(req.ReportPath); err != nil {
			return report, err
		}
	}

	return report, nil
}

// applyAndRerun is the error-containment boundary: any failure while
// applying the patch or re-running the tests is captured as a patch error
// rather than propagated, so the evaluation still yields a definitive
// report. On failure patchApplied is false and after is nil, keeping the
// report invariants intact.
func (e *Evaluator) applyAndRerun(workDir string, command []string, req *Request) (bool, *runner.Outcome, string) {
	if err := patch.Apply(workDir, req.Patch); err != nil {
		return false, nil, err.Error()
	}

	after, err := runTests(workDir, command, req)
	if err != nil {
		return false, nil, err.Error()
	}

	return true, after, ""
}

func runTests(dir string, command []string, req *Request) (*runner.Outcome, error) {
	return runner.Execute(&runner.Config{
		Dir:     dir,
		Command: command[0],
		Args:    command[1:],
		Timeout: req.Timeout,
		Verbose: req.Verbose,
	})
}

func buildReport(sourceDir, workDir string, before, after *runner.Outcome, patchApplied bool, patchErr string, status Status, req *Request) *output.Report {
	report := &output.Report{
		Name:         filepath.Base(sourceDir),
		ProgramDir:   sourceDir,
		Before:       toTestResult(before),
		After:        toTestResult(after),
		PatchApplied: patchApplied,
		Status:       string(status),
		Context:      req.Context,
	}

	if req.KeepWorkspace {
		report.PatchedDir = &workDir
	}
	if patchErr != "" {
		report.PatchError = &patchErr
	}
	if req.Score != nil {
		awarded := decimal.Zero
		if status == StatusRepaired {
			awarded = *req.Score
		}
		report.Score = &awarded
	}

	return report
}

func toTestResult(outcome *runner.Outcome) *output.TestResult {
	if outcome == nil {
		return nil
	}
	return &output.TestResult{
		Passed:     outcome.Passed,
		ReturnCode: outcome.ExitCode,
		Stdout:     outcome.Stdout,
		Stderr:     outcome.Stderr,
	}
}
