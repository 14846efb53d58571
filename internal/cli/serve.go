package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selfatlas/selfatlas/internal/server"
)

var (
	serveHost string
	servePort int
)

// serveCmd starts the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for triage and export",
	Long: `Serve exposes the inference lifecycle over HTTP:

  GET  /api/inference        next pending inference (FIFO)
  GET  /api/queue            pending inferences in ranked order
  POST /api/triage           approve or reject an inference
  GET  /api/export           approved set (blocked if secrets detected)
  POST /api/generate         generate one inference from ad-hoc content
  POST /api/ingest/:source   ingest a source archive
  POST /api/process          process a batch of raw items`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(a.store, a.pipeline, a.ranker, a.scanner, a.log.Named("http"))
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return srv.Start(addr)
}
