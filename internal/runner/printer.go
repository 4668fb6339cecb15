package runner

import (
	"fmt"
	"os"
	"strings"
)

// PrintPreExecution prints test-run details before execution
func PrintPreExecution(config *Config) {
	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintln(os.Stderr, "Test Run Details")
	fmt.Fprintln(os.Stderr, "========================================")
	fmt.Fprintf(os.Stderr, "Command:   %s\n", strings.Join(append([]string{config.Command}, config.Args...), " "))
	fmt.Fprintf(os.Stderr, "Directory: %s\n", config.Dir)
	if config.Timeout > 0 {
		fmt.Fprintf(os.Stderr, "Timeout:   %s\n", config.Timeout)
	}
	fmt.Fprintln(os.Stderr, "----------------------------------------")
}

// PrintPostExecution prints test-run results after the command completes
func PrintPostExecution(outcome *Outcome) {
	fmt.Fprintln(os.Stderr, "----------------------------------------")
	fmt.Fprintln(os.Stderr, "Test Run Results:")
	fmt.Fprintln(os.Stderr, "----------------------------------------")
	fmt.Fprintf(os.Stderr, "Status:         %s\n", outcome.Status)
	fmt.Fprintf(os.Stderr, "Exit Code:      %d\n", outcome.ExitCode)
	fmt.Fprintf(os.Stderr, "Execution Time: %d ms\n", outcome.ExecutionTime)
	fmt.Fprintln(os.Stderr, "========================================")
}
