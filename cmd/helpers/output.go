package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/verdict-ci/verdict/cmd/config"
	"github.com/verdict-ci/verdict/internal/output"
	"github.com/verdict-ci/verdict/internal/webhook"
)

// OutputJSON marshals and prints the report as JSON
func OutputJSON(report *output.Report) error {
	jsonOutput, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}

	fmt.Println(string(jsonOutput))
	return nil
}

// Parsed webhook configuration for the eval command (internal use)
var (
	evalWebhookConfigParsed *webhook.Config
	evalRetryConfig         *webhook.RetryConfig
)

// ResetWebhookConfigs resets the global webhook configuration (for testing)
func ResetWebhookConfigs() {
	evalWebhookConfigParsed = nil
	evalRetryConfig = nil
}

// ParseWebhookConfig parses webhook configuration for the eval command
func ParseWebhookConfig(cfg *config.WebhookConfig) error {
	webhookConfig, retryConfig, err := ParseWebhookConfigToInternal(cfg)
	if err != nil {
		return err
	}

	evalWebhookConfigParsed = webhookConfig
	evalRetryConfig = retryConfig
	return nil
}

// OutputJSONAndWebhook prints the report JSON on stdout and, when a webhook
// is configured, sends the report there first. Webhook failures are recorded
// on the local report but never fail the command.
func OutputJSONAndWebhook(report *output.Report, verbose bool) error {
	if evalWebhookConfigParsed != nil && evalWebhookConfigParsed.URL != "" {
		client := webhook.NewClient(evalWebhookConfigParsed, evalRetryConfig, verbose)

		if verbose {
			fmt.Fprintf(os.Stderr, "[WEBHOOK] Sending to %s\n", evalWebhookConfigParsed.URL)
		}

		// The webhook payload omits the local-only webhook status fields
		webhookPayload := *report
		webhookPayload.WebhookSent = false
		webhookPayload.WebhookError = ""

		ctx := context.Background()
		if err := client.Send(ctx, &webhookPayload); err != nil {
			fmt.Fprintf(os.Stderr, "[WEBHOOK] Error: %v\n", err)

			report.WebhookSent = false
			report.WebhookError = err.Error()
		} else {
			report.WebhookSent = true
		}
	}

	return OutputJSON(report)
}

// PrintContextInfo prints the merged report context in verbose mode
func PrintContextInfo(context any) {
	if context == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintln(os.Stderr, "Context Configuration")
	fmt.Fprintln(os.Stderr, "========================================")

	jsonBytes, err := json.MarshalIndent(context, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", context)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", string(jsonBytes))
	}

	fmt.Fprintln(os.Stderr, "----------------------------------------")
}
