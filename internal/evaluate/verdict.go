package evaluate

import "github.com/verdict-ci/verdict/internal/runner"

// Status is the four-way classification of a patch's effect on the tests.
type Status string

const (
	StatusRepaired    Status = "repaired"
	StatusRegressed   Status = "regressed"
	StatusNotRepaired Status = "not_repaired"
	StatusPatchFailed Status = "patch_failed"
)

// Verdict derives the evaluation status from the two test outcomes. It is a
// pure function: patch_failed when the patch never applied, repaired when a
// failing suite turned passing, regressed when a passing suite turned
// failing, not_repaired otherwise.
func Verdict(before, after *runner.Outcome, patchApplied bool) Status {
	if !patchApplied || after == nil {
		return StatusPatchFailed
	}

	switch {
	case !before.Passed && after.Passed:
		return StatusRepaired
	case before.Passed && !after.Passed:
		return StatusRegressed
	default:
		return StatusNotRepaired
	}
}
