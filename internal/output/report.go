package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

// TestResult is the serialized outcome of one test-suite run.
type TestResult struct {
	Passed     bool   `json:"passed"`
	ReturnCode int    `json:"returncode"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
}

// Report is the full result of one patch evaluation. Nullable fields are
// pointers so they serialize as JSON null: PatchedDir is null unless the
// workspace was retained, After is null when the patch did not apply, and
// PatchError is null when it did.
type Report struct {
	Name         string           `json:"name"`
	ProgramDir   string           `json:"program_dir"`
	PatchedDir   *string          `json:"patched_dir"`
	Before       *TestResult      `json:"before"`
	After        *TestResult      `json:"after"`
	PatchApplied bool             `json:"patch_applied"`
	PatchError   *string          `json:"patch_error"`
	Status       string           `json:"status"`
	Score        *decimal.Decimal `json:"score,omitempty"`
	Context      any              `json:"context,omitempty"`

	// Webhook status (only in local output, not sent to webhook)
	WebhookSent  bool   `json:"webhook_sent,omitempty"`
	WebhookError string `json:"webhook_error,omitempty"`
}

// Marshal renders the report the way it is persisted: two-space indentation.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Write persists the report to path, creating parent directories as needed.
func (r *Report) Write(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
