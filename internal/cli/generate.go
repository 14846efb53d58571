package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// generateCmd produces a single inference from ad-hoc content
var generateCmd = &cobra.Command{
	Use:   "generate <source> <content>",
	Short: "Generate one inference from ad-hoc content",
	Long: `Generate submits a single (source, content) pair to the local model
and queues the result for triage. Useful for spot-checking the model or
seeding the queue without a full ingest.

Example:
  selfatlas generate imessage "Message to Mom: 'I'll bring the vegan salad.'"`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	source, content := args[0], args[1]

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.close()

	inf, err := a.pipeline.GenerateOne(ctx, source, content)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %s (confidence %.2f): %s\n", inf.ID, inf.Confidence, inf.Inference)
	return nil
}
