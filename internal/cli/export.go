package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/selfatlas/selfatlas/internal/model"
)

var exportOut string

// exportCmd releases the approved set, gated by the secret scan
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export approved inferences (blocked if secrets are detected)",
	Long: `Export serializes every approved inference and runs the security gate
over the full payload before releasing it. Any detector hit blocks the
export; only the hit count is reported, never the matched text.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.close()

	approved, err := a.store.ListInferences(ctx, model.StatusApproved)
	if err != nil {
		return err
	}
	if approved == nil {
		approved = []model.Inference{}
	}

	payload, err := json.MarshalIndent(approved, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize export: %w", err)
	}

	safe, hits := a.scanner.Scan(string(payload))
	if !safe {
		return fmt.Errorf("export blocked: %d potential secret(s) detected; sanitize the approved set and retry", len(hits))
	}

	if exportOut == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(exportOut, payload, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Exported %d approved inferences to %s\n", len(approved), exportOut)
	return nil
}
