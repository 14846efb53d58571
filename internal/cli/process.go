package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var processMax int

// processCmd runs one generation batch
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate inferences from stored raw items",
	Long: `Process pulls a bounded batch of raw items (newest first), asks the
local model for one inference per item, and queues the results for triage.
With pipeline.lint_enabled set, candidates are first filtered through the
quality lint gate and only the survivors are queued.

If the local model service is unreachable the batch still completes using
the mock generator; synthetic inferences are tagged as such.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().IntVar(&processMax, "max", 0, "max raw items to process (default: configured batch size)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.pipeline.ProcessBatch(ctx, processMax)
	if err != nil {
		return err
	}
	if result.NoData {
		fmt.Println("No raw items to process. Ingest a source first.")
		return nil
	}

	fmt.Printf("Generated %d inferences (%d lint-rejected, %d skipped)\n",
		result.Generated, result.LintRejected, result.Skipped)
	return nil
}
