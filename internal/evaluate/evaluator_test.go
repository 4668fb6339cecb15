package evaluate

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// The fixture program is a directory whose "test suite" greps answer.txt,
// so the tests run anywhere a shell is available.
var grepCommand = []string{"sh", "-c", "grep -q right answer.txt"}

const fixDiff = `--- a/answer.txt
+++ b/answer.txt
@@ -1 +1 @@
-wrong
+right
`

const breakDiff = `--- a/answer.txt
+++ b/answer.txt
@@ -1 +1 @@
-right
+wrong
`

const cosmeticDiff = `--- a/notes.txt
+++ b/notes.txt
@@ -1 +1 @@
-draft
+final
`

const malformedDiff = `--- a/answer.txt
+++ b/answer.txt
@@ -1 +1 @@
-context that does not exist
+right
`

func setupProgram(t *testing.T, name, answer string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("failed to create program dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "answer.txt"), []byte(answer+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write answer.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("draft\n"), 0o644); err != nil {
		t.Fatalf("failed to write notes.txt: %v", err)
	}
	return dir
}

// workspaceLeaks globs the temp dir for workspaces left behind for the
// given program name.
func workspaceLeaks(t *testing.T, name string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), name+"_patched_*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	return matches
}

func TestEvaluateRepaired(t *testing.T) {
	dir := setupProgram(t, "prog_fix", "wrong")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: fixDiff})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.Status != string(StatusRepaired) {
		t.Errorf("status = %s, want %s", report.Status, StatusRepaired)
	}
	if !report.PatchApplied {
		t.Error("expected patch_applied true")
	}
	if report.Before == nil || report.Before.Passed {
		t.Error("expected failing before outcome")
	}
	if report.After == nil || !report.After.Passed {
		t.Error("expected passing after outcome")
	}
	if report.PatchError != nil {
		t.Errorf("unexpected patch_error: %v", *report.PatchError)
	}
	if report.PatchedDir != nil {
		t.Error("patched_dir must be null when the workspace is not retained")
	}
	if leaks := workspaceLeaks(t, "prog_fix"); len(leaks) != 0 {
		t.Errorf("workspace leaked: %v", leaks)
	}
}

func TestEvaluateRegressed(t *testing.T) {
	dir := setupProgram(t, "prog_break", "right")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: breakDiff})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.Status != string(StatusRegressed) {
		t.Errorf("status = %s, want %s", report.Status, StatusRegressed)
	}
	if !report.Before.Passed || report.After.Passed {
		t.Errorf("unexpected outcomes: before=%v after=%v", report.Before.Passed, report.After.Passed)
	}
}

func TestEvaluateNotRepaired(t *testing.T) {
	dir := setupProgram(t, "prog_noop", "right")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: cosmeticDiff})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.Status != string(StatusNotRepaired) {
		t.Errorf("status = %s, want %s", report.Status, StatusNotRepaired)
	}
}

func TestEvaluatePatchFailed(t *testing.T) {
	dir := setupProgram(t, "prog_badpatch", "wrong")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: malformedDiff})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.Status != string(StatusPatchFailed) {
		t.Errorf("status = %s, want %s", report.Status, StatusPatchFailed)
	}
	if report.PatchApplied {
		t.Error("expected patch_applied false")
	}
	if report.After != nil {
		t.Error("after must be null when the patch did not apply")
	}
	if report.PatchError == nil || strings.TrimSpace(*report.PatchError) == "" {
		t.Error("expected non-empty patch_error diagnostic")
	}
	if leaks := workspaceLeaks(t, "prog_badpatch"); len(leaks) != 0 {
		t.Errorf("workspace leaked after patch failure: %v", leaks)
	}
}

func TestEvaluateMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "prog_missing")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: missing, Patch: fixDiff})
	if report != nil {
		t.Error("expected no report for missing source")
	}
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("expected ErrProgramNotFound, got %v", err)
	}
	if leaks := workspaceLeaks(t, "prog_missing"); len(leaks) != 0 {
		t.Errorf("workspace created for missing source: %v", leaks)
	}
}

func TestEvaluateBaselineSpawnErrorIsFatal(t *testing.T) {
	dir := setupProgram(t, "prog_nobin", "wrong")

	report, err := New([]string{"definitely-not-a-real-binary-xyz"}).Evaluate(&Request{ProgramDir: dir, Patch: fixDiff})
	if report != nil {
		t.Error("expected no report when the baseline cannot run")
	}
	if err == nil || !strings.Contains(err.Error(), "baseline run failed") {
		t.Errorf("expected baseline failure, got %v", err)
	}
}

func TestEvaluateAfterRunSpawnErrorIsContained(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prog_delrunner")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\nexit 1\n"
	if err := os.WriteFile(filepath.Join(dir, "run_tests.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	// The patch deletes the test runner, so the after run cannot spawn.
	deleteDiff := `--- a/run_tests.sh
+++ /dev/null
@@ -1,2 +0,0 @@
-#!/bin/sh
-exit 1
`

	report, err := New([]string{"./run_tests.sh"}).Evaluate(&Request{ProgramDir: dir, Patch: deleteDiff})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.Status != string(StatusPatchFailed) {
		t.Errorf("status = %s, want %s", report.Status, StatusPatchFailed)
	}
	if report.After != nil {
		t.Error("after must be null when the after run never happened")
	}
	if report.PatchError == nil || *report.PatchError == "" {
		t.Error("expected patch_error carrying the spawn failure")
	}
}

func TestEvaluateKeepWorkspace(t *testing.T) {
	dir := setupProgram(t, "prog_keep", "wrong")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: fixDiff, KeepWorkspace: true})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.PatchedDir == nil {
		t.Fatal("expected patched_dir to be set when retaining the workspace")
	}
	defer func() { _ = os.RemoveAll(*report.PatchedDir) }()

	data, err := os.ReadFile(filepath.Join(*report.PatchedDir, "answer.txt"))
	if err != nil {
		t.Fatalf("retained workspace missing: %v", err)
	}
	if string(data) != "right\n" {
		t.Errorf("retained workspace not patched: %q", string(data))
	}
}

func TestEvaluateDoesNotMutateSource(t *testing.T) {
	dir := setupProgram(t, "prog_immutable", "wrong")

	snapshot := func() map[string]string {
		files := make(map[string]string)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files[path] = string(data)
			return nil
		})
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		return files
	}

	before := snapshot()
	if _, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: fixDiff}); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	after := snapshot()

	if !reflect.DeepEqual(before, after) {
		t.Error("source directory changed during evaluation")
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	dir := setupProgram(t, "prog_idem", "wrong")
	evaluator := New(grepCommand)

	first, err := evaluator.Evaluate(&Request{ProgramDir: dir, Patch: fixDiff})
	if err != nil {
		t.Fatalf("first Evaluate failed: %v", err)
	}
	second, err := evaluator.Evaluate(&Request{ProgramDir: dir, Patch: fixDiff})
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}

	if first.Status != second.Status {
		t.Errorf("status differs across runs: %s vs %s", first.Status, second.Status)
	}
	if !reflect.DeepEqual(first.Before, second.Before) {
		t.Error("before outcome differs across runs")
	}
	if !reflect.DeepEqual(first.After, second.After) {
		t.Error("after outcome differs across runs")
	}
}

func TestEvaluateScore(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		patch     string
		wantScore string
	}{
		{name: "full score when repaired", answer: "wrong", patch: fixDiff, wantScore: "1.5"},
		{name: "zero score otherwise", answer: "right", patch: breakDiff, wantScore: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupProgram(t, "prog_score", tt.answer)
			score := decimal.RequireFromString("1.5")

			report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: tt.patch, Score: &score})
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if report.Score == nil {
				t.Fatal("expected score in report")
			}
			if report.Score.String() != tt.wantScore {
				t.Errorf("score = %s, want %s", report.Score.String(), tt.wantScore)
			}
		})
	}
}

func TestEvaluatePersistsReport(t *testing.T) {
	dir := setupProgram(t, "prog_persist", "wrong")
	reportPath := filepath.Join(t.TempDir(), "nested", "out", "report.json")

	report, err := New(grepCommand).Evaluate(&Request{ProgramDir: dir, Patch: fixDiff, ReportPath: reportPath})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}

	var onDisk map[string]any
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("persisted report is not valid JSON: %v", err)
	}

	for _, key := range []string{"name", "program_dir", "patched_dir", "before", "after", "patch_applied", "patch_error", "status"} {
		if _, ok := onDisk[key]; !ok {
			t.Errorf("persisted report missing key %q", key)
		}
	}
	if onDisk["status"] != report.Status {
		t.Errorf("persisted status %v differs from returned %s", onDisk["status"], report.Status)
	}
	if onDisk["patched_dir"] != nil {
		t.Error("patched_dir must serialize as null when not retained")
	}
}
