package helpers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// SplitTestCommand extracts the test command override from the arguments
// after the '--' separator. No separator and no arguments means no override;
// arguments without the separator are an error.
func SplitTestCommand(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}

	if cmd.ArgsLenAtDash() == -1 {
		return nil, fmt.Errorf("test command override requires the '--' separator")
	}

	return args, nil
}

// ParseTimeout parses and validates a timeout duration string
func ParseTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout duration: %w", err)
	}

	if timeout <= 0 {
		return 0, fmt.Errorf("timeout must be positive")
	}

	return timeout, nil
}

// ParseScore parses a decimal score string
func ParseScore(scoreStr string) (decimal.Decimal, error) {
	score, err := decimal.NewFromString(scoreStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid score: %w", err)
	}
	if score.IsNegative() {
		return decimal.Zero, fmt.Errorf("score must not be negative")
	}
	return score, nil
}
