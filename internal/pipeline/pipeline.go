// Package pipeline drives raw items through the generator and lint gate
// into the store, in bounded batches. Batch processing is pulled by an
// external trigger; there is no background scheduler.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selfatlas/selfatlas/internal/brain"
	"github.com/selfatlas/selfatlas/internal/lint"
	"github.com/selfatlas/selfatlas/internal/model"
	"github.com/selfatlas/selfatlas/internal/store"
)

// defaultBatchSize caps a batch when the caller does not
const defaultBatchSize = 25

// Pipeline orchestrates generation over stored raw items
type Pipeline struct {
	store       *store.Store
	gen         *brain.Generator
	gate        *lint.Gate
	lintEnabled bool
	batchSize   int
	log         *zap.Logger
}

// New creates a pipeline. The lint gate filters candidates before
// persistence when cfg.LintEnabled is set.
func New(st *store.Store, gen *brain.Generator, gate *lint.Gate, cfg model.PipelineConfig, log *zap.Logger) *Pipeline {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		store:       st,
		gen:         gen,
		gate:        gate,
		lintEnabled: cfg.LintEnabled && gate != nil,
		batchSize:   batchSize,
		log:         log,
	}
}

// BatchResult summarizes one processing batch
type BatchResult struct {
	// NoData is set when no raw items exist at all — distinct from a
	// batch where every item failed
	NoData bool `json:"no_data,omitempty"`

	// Generated counts inferences persisted to the triage queue
	Generated int `json:"generated"`

	// LintRejected counts candidates the quality gate filtered out
	LintRejected int `json:"lint_rejected"`

	// Skipped counts items dropped by persistence failures
	Skipped int `json:"skipped"`
}

// ProcessBatch reads up to maxItems raw items (newest first; <=0 uses the
// configured batch size) and generates one inference per item. Individual
// item failures are logged and skipped; they never abort the rest of the
// batch. Cancellation is not supported mid-batch — callers bound latency by
// bounding maxItems.
func (p *Pipeline) ProcessBatch(ctx context.Context, maxItems int) (BatchResult, error) {
	if maxItems <= 0 {
		maxItems = p.batchSize
	}

	items, err := p.store.ListRawItems(ctx, maxItems)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list raw items: %w", err)
	}
	if len(items) == 0 {
		return BatchResult{NoData: true}, nil
	}

	var result BatchResult
	for _, item := range items {
		cand := p.gen.Generate(ctx, item.Source, item.Content)

		if p.lintEnabled {
			if issues := p.gate.Lint(cand); len(issues) > 0 {
				p.log.Info("candidate rejected by lint gate",
					zap.String("raw_item", item.ID),
					zap.String("code", issues[0].Code),
					zap.Int("issues", len(issues)))
				result.LintRejected++
				continue
			}
		}

		if err := p.store.InsertInference(ctx, cand.Inference()); err != nil {
			p.log.Warn("skipping item: persist inference failed",
				zap.String("raw_item", item.ID),
				zap.Error(err))
			result.Skipped++
			continue
		}
		result.Generated++
	}

	p.log.Info("batch processed",
		zap.Int("items", len(items)),
		zap.Int("generated", result.Generated),
		zap.Int("lint_rejected", result.LintRejected),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// GenerateOne generates and persists a single inference for an ad-hoc
// (source, content) pair, bypassing the lint gate like a manual trigger
// should: the reviewer sees exactly what the brain produced.
func (p *Pipeline) GenerateOne(ctx context.Context, source, content string) (model.Inference, error) {
	cand := p.gen.Generate(ctx, source, content)
	inf := cand.Inference()
	if err := p.store.InsertInference(ctx, inf); err != nil {
		return model.Inference{}, fmt.Errorf("persist inference: %w", err)
	}
	return inf, nil
}
