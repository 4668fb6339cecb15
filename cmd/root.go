package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "A patch evaluation tool with structured output",
	Long: `Verdict runs a program's test suite before and after applying a unified-diff
patch to an isolated copy, then classifies the outcome as repaired, regressed,
not_repaired or patch_failed. Results are output as JSON.

Useful for program-repair benchmarks, grading pipelines and CI patch gating.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
