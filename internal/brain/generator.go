package brain

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/selfatlas/selfatlas/internal/model"
)

// liveConfidence is the placeholder confidence for live model output: local
// models do not expose calibrated confidence, so the value is fixed and only
// the mock path uses templated confidences.
const liveConfidence = 0.85

// mockTag marks synthetic inferences produced in degraded mode
const mockTag = " (Mock)"

const aliveCacheKey = "alive"

// mockTemplate is one canned (inference, confidence) pair for degraded mode
type mockTemplate struct {
	inference  string
	confidence float64
}

var mockTemplates = []mockTemplate{
	{"User prefers vegan food options.", 0.88},
	{"User owns a 3D printer (Prusa).", 0.95},
	{"User coordinates family logistics over chat.", 0.72},
}

// Generator produces candidate inferences, preferring the live model and
// falling back to mock templates when it is unreachable or failing. A single
// attempt then fallback is the defined behavior — no retries, so a flaky
// local service cannot add unbounded latency.
type Generator struct {
	provider     Provider
	probeTimeout time.Duration
	alive        *gocache.Cache
	limiter      *rate.Limiter
	newID        func() string
	log          *zap.Logger
}

// NewGenerator creates a generator over the given provider
func NewGenerator(provider Provider, cfg model.BrainConfig, log *zap.Logger) *Generator {
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout == 0 {
		probeTimeout = 2 * time.Second
	}
	probeTTL := cfg.ProbeTTL
	if probeTTL == 0 {
		probeTTL = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{
		provider:     provider,
		probeTimeout: probeTimeout,
		alive:        gocache.New(probeTTL, 2*probeTTL),
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		newID:        uuid.NewString,
		log:          log,
	}
}

// Generate turns one (source, content) pair into a candidate inference.
// It never fails: any liveness, transport, or protocol problem degrades to
// the mock path.
func (g *Generator) Generate(ctx context.Context, source, content string) model.Candidate {
	cand, err := g.tryLive(ctx, source, content)
	if err != nil {
		g.log.Warn("brain degraded to mock generator",
			zap.String("provider", g.provider.Name()),
			zap.Error(err))
		return g.Mock(source, content)
	}
	return cand
}

// tryLive is the live branch of the generation contract: probe, then one
// bounded request. Every failure comes back wrapping ErrUnavailable.
func (g *Generator) tryLive(ctx context.Context, source, content string) (model.Candidate, error) {
	if !g.isAlive(ctx) {
		return model.Candidate{}, fmt.Errorf("%w: liveness probe failed", ErrUnavailable)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return model.Candidate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text, err := g.provider.Complete(ctx, BuildPrompt(source, content))
	if err != nil {
		// Also drop the cached liveness so the next call re-probes
		g.alive.Delete(aliveCacheKey)
		return model.Candidate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return model.Candidate{
		ID:         g.newID(),
		Source:     source,
		Content:    content,
		Statement:  text,
		Confidence: model.ConfidenceString(liveConfidence),
		Status:     model.StatusPending,
	}, nil
}

// Mock is the degraded-mode branch: a random canned template, tagged as
// synthetic. Random selection is acceptable here since it only fires when
// the model service is down. The top-level rand functions are used because
// one generator serves concurrent HTTP handlers and a *rand.Rand is not
// safe for concurrent use.
func (g *Generator) Mock(source, content string) model.Candidate {
	t := mockTemplates[rand.Intn(len(mockTemplates))]
	return model.Candidate{
		ID:         g.newID(),
		Source:     source,
		Content:    content,
		Statement:  t.inference + mockTag,
		Confidence: model.ConfidenceString(t.confidence),
		Status:     model.StatusPending,
		Mock:       true,
	}
}

// isAlive probes the provider, caching the result so a batch does one probe
// rather than one per item
func (g *Generator) isAlive(ctx context.Context) bool {
	if v, found := g.alive.Get(aliveCacheKey); found {
		return v.(bool)
	}

	probeCtx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()

	alive := g.provider.IsAlive(probeCtx)
	g.alive.Set(aliveCacheKey, alive, gocache.DefaultExpiration)
	return alive
}
