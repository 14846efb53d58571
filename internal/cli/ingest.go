package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selfatlas/selfatlas/internal/ingest"
)

// ingestCmd parses a source archive into raw items
var ingestCmd = &cobra.Command{
	Use:   "ingest <source> <path>",
	Short: "Ingest a source archive into the raw item store",
	Long: `Ingest parses a source-specific archive and upserts the captured
observations. Re-running over the same archive is idempotent: items carry
stable source-derived ids, so existing rows are updated, never duplicated.

Supported sources:
  chatgpt   ChatGPT data export (conversations.json)
  safari    Safari browsing history (History.db)

Example:
  selfatlas ingest chatgpt ~/Downloads/export/conversations.json
  selfatlas ingest safari ~/Library/Safari/History.db`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	source, path := args[0], args[1]

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.close()

	ingestor, err := ingest.New(source, path)
	if err != nil {
		return err
	}

	items, err := ingestor.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", source, err)
	}

	stored, err := a.store.UpsertRawItems(ctx, items)
	if err != nil {
		return fmt.Errorf("store raw items: %w", err)
	}

	fmt.Printf("Ingested %d items from %s (%d stored)\n", len(items), source, stored)
	return nil
}
