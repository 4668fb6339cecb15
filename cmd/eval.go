package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	cmdconfig "github.com/verdict-ci/verdict/cmd/config"
	"github.com/verdict-ci/verdict/cmd/helpers"
	contextparser "github.com/verdict-ci/verdict/internal/context"
	"github.com/verdict-ci/verdict/internal/evaluate"
)

var (
	evalProgramDir    string
	evalPatch         string
	evalReportPath    string
	evalKeepWorkspace bool

	evalCommonFlags   cmdconfig.CommonFlags
	evalContextConfig cmdconfig.ContextConfig
	evalWebhookConfig cmdconfig.WebhookConfig
	evalUploadConfig  cmdconfig.UploadConfig
)

var evalCmd = &cobra.Command{
	Use:   "eval --program <dir> --patch <file-or-text> [flags] [-- <test command...>]",
	Short: "Evaluate a patch against a program's test suite",
	Long: `Evaluate whether a patch fixes a failing program. The test suite runs once
against the original program directory, the patch is applied to an isolated
copy, and the suite runs again there. The two outcomes yield the verdict:

  repaired      tests failed before and pass after
  regressed     tests passed before and fail after
  not_repaired  anything else with the patch applied
  patch_failed  the patch did not apply

The patch may be a path to a .diff/.patch file or literal unified-diff text.
The default test command is 'python -m pytest -q'; a trailing '-- <command>'
overrides it. The evaluation report is printed as JSON and exits 0 for every
completed evaluation regardless of verdict.`,
	Example: `  verdict eval --program ./bugs/case_001 --patch fix.diff
  verdict eval -p ./svc --patch fix.diff --report out/report.json -- go test ./...
  verdict eval -p ./svc --patch "$(cat fix.diff)" --keep-workspace --score 1.5`,
	RunE: evalCommand,
}

func evalCommand(cmd *cobra.Command, args []string) error {
	testCommand, err := helpers.SplitTestCommand(cmd, args)
	if err != nil {
		return err
	}

	provider, uploadConf, err := helpers.SetupUploadProvider(&evalUploadConfig)
	if err != nil {
		return err
	}

	localReport, remoteReport := "", ""
	if evalReportPath != "" {
		localReport, remoteReport = helpers.ParseReportPath(evalReportPath, provider != nil)
	}

	ctxData, err := contextparser.BuildContext(
		evalContextConfig.JSON,
		evalContextConfig.KV,
		evalContextConfig.File,
	)
	if err != nil {
		return fmt.Errorf("failed to build context: %w", err)
	}

	if evalCommonFlags.Verbose {
		helpers.PrintContextInfo(ctxData)
		if provider != nil {
			helpers.PrintUploadInfo(provider, uploadConf, remoteReport)
		}
	}

	req := &evaluate.Request{
		ProgramDir:    evalProgramDir,
		Patch:         evalPatch,
		TestCommand:   testCommand,
		ReportPath:    localReport,
		KeepWorkspace: evalKeepWorkspace,
		Timeout:       evalCommonFlags.Timeout,
		Verbose:       evalCommonFlags.Verbose,
		Context:       ctxData,
	}
	if evalCommonFlags.ScoreSet {
		score := evalCommonFlags.Score
		req.Score = &score
	}

	evaluator := evaluate.New(nil)
	report, err := evaluator.Evaluate(req)
	if report == nil {
		if errors.Is(err, evaluate.ErrProgramNotFound) {
			return err
		}
		return fmt.Errorf("evaluation failed: %w", err)
	}
	if err != nil {
		// Report persistence is a side effect; the evaluation itself
		// completed, so warn and carry on.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if provider != nil {
		if err := helpers.UploadReport(provider, report, remoteReport, evalCommonFlags.Verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	return helpers.OutputJSONAndWebhook(report, evalCommonFlags.Verbose)
}

func init() {
	evalCmd.Flags().StringVarP(&evalProgramDir, "program", "p", "", "Program directory to evaluate (required)")
	evalCmd.Flags().StringVar(&evalPatch, "patch", "", "Patch file path (.diff/.patch) or literal diff text (required)")
	evalCmd.Flags().StringVarP(&evalReportPath, "report", "r", "", "Report destination path, local[:remote] with an upload provider")
	evalCmd.Flags().BoolVar(&evalKeepWorkspace, "keep-workspace", false, "Keep the patched workspace directory and report its path")

	_ = evalCmd.MarkFlagRequired("program")
	_ = evalCmd.MarkFlagRequired("patch")

	helpers.SetupCommonFlags(evalCmd, &evalCommonFlags)
	helpers.SetupContextFlags(evalCmd, &evalContextConfig)
	helpers.SetupWebhookFlags(evalCmd, &evalWebhookConfig)
	helpers.SetupUploadFlags(evalCmd, &evalUploadConfig)

	evalCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		var err error

		evalCommonFlags.Timeout, err = helpers.ParseTimeout(evalCommonFlags.TimeoutStr)
		if err != nil {
			return err
		}

		evalCommonFlags.ScoreSet = cmd.Flags().Changed("score")
		if evalCommonFlags.ScoreSet {
			evalCommonFlags.Score, err = helpers.ParseScore(evalCommonFlags.ScoreStr)
			if err != nil {
				return err
			}
		}

		return helpers.ParseWebhookConfig(&evalWebhookConfig)
	}
}
