package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selfatlas/selfatlas/internal/model"
	"github.com/selfatlas/selfatlas/internal/store"
)

var (
	triageApprove bool
	triageReject  bool
	triageNotes   string
)

// triageCmd applies a human decision to an inference
var triageCmd = &cobra.Command{
	Use:   "triage <id>",
	Short: "Approve or reject a pending inference",
	Long: `Triage moves an inference to a terminal state. Repeating the same
decision is a no-op success; switching decisions re-triages the inference
(the last decision wins). Rows are never deleted — the inference table is
the audit trail.

Example:
  selfatlas triage 4f7c... --approve
  selfatlas triage 4f7c... --reject --notes "hallucinated, no such purchase"`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

// queueCmd shows the pending set in review order
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show pending inferences in ranked review order",
	RunE:  runQueue,
}

func init() {
	rootCmd.AddCommand(triageCmd)
	rootCmd.AddCommand(queueCmd)

	triageCmd.Flags().BoolVar(&triageApprove, "approve", false, "approve the inference")
	triageCmd.Flags().BoolVar(&triageReject, "reject", false, "reject the inference")
	triageCmd.Flags().StringVar(&triageNotes, "notes", "", "notes to attach to the decision")
	triageCmd.MarkFlagsMutuallyExclusive("approve", "reject")
	triageCmd.MarkFlagsOneRequired("approve", "reject")
}

func runTriage(cmd *cobra.Command, args []string) error {
	id := args[0]

	status := model.StatusApproved
	if triageReject {
		status = model.StatusRejected
	}

	var notes *string
	if cmd.Flags().Changed("notes") {
		notes = &triageNotes
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.close()

	err = a.store.UpdateInferenceStatus(ctx, id, status, notes)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("inference %s not found", id)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Inference %s -> %s\n", id, status)
	return nil
}

func runQueue(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.close()

	pending, err := a.store.ListInferences(ctx, model.StatusPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No pending inferences.")
		return nil
	}

	for _, inf := range a.ranker.Rank(pending) {
		fmt.Printf("%.3f  %s  [%s]  %s\n", a.ranker.Score(inf), inf.ID, inf.Source, inf.Inference)
	}
	return nil
}
