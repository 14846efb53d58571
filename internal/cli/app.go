package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selfatlas/selfatlas/internal/brain"
	"github.com/selfatlas/selfatlas/internal/lint"
	"github.com/selfatlas/selfatlas/internal/logging"
	"github.com/selfatlas/selfatlas/internal/model"
	"github.com/selfatlas/selfatlas/internal/pipeline"
	"github.com/selfatlas/selfatlas/internal/rank"
	"github.com/selfatlas/selfatlas/internal/secscan"
	"github.com/selfatlas/selfatlas/internal/store"
)

// app holds the wired components behind every command. The store handle is
// passed explicitly; nothing here is a module-level singleton.
type app struct {
	cfg      model.Config
	log      *zap.Logger
	store    *store.Store
	pipeline *pipeline.Pipeline
	ranker   *rank.Ranker
	scanner  *secscan.Scanner
}

// newApp wires the application from configuration. Opening the store also
// performs the one-shot best-effort import of the legacy JSON inferences so
// existing users keep their state.
func newApp(ctx context.Context, cfg model.Config) (*app, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Data.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if cfg.Data.LegacyInferencesJSON != "" {
		imported, err := st.ImportLegacyInferences(ctx, cfg.Data.LegacyInferencesJSON)
		if err != nil {
			log.Warn("legacy import failed", zap.Error(err))
		} else if imported > 0 {
			log.Info("imported legacy inferences", zap.Int("count", imported))
		}
	}

	provider, err := brain.NewProvider(cfg.Brain)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	gen := brain.NewGenerator(provider, cfg.Brain, log.Named("brain"))
	gate := lint.NewGate(lint.DefaultConfig())

	return &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		pipeline: pipeline.New(st, gen, gate, cfg.Pipeline, log.Named("pipeline")),
		ranker:   rank.NewRanker(nil),
		scanner:  secscan.NewDefaultScanner(),
	}, nil
}

// close releases the app's resources
func (a *app) close() {
	_ = a.store.Close()
	_ = a.log.Sync()
}
