// Package rank orders pending inferences by estimated review-worthiness.
//
// The objective is a rough Brenner-style approximation:
//
//	score ≈ (expected discriminability × option value) / (cost × ambiguity)
//
// encoded as confidence scaled by a multi-source bonus, a length penalty
// (longer text tends to bundle multiple claims, reducing discriminability),
// and a bonus for high-signal sources. Ranking only changes presentation
// order for the reviewer; persisted order is untouched.
package rank

import (
	"sort"
	"strings"

	"github.com/selfatlas/selfatlas/internal/model"
)

// DefaultHighSignalSources are the channels that historically produce the
// most reviewable inferences. Ordered configuration data, not control flow.
var DefaultHighSignalSources = []string{"chatgpt", "imessage", "safari"}

const (
	multiSourceBonus = 1.15
	sourceBonus      = 1.05

	longPenalty     = 0.80
	mediumPenalty   = 0.90
	longThreshold   = 220
	mediumThreshold = 140
)

// Ranker scores and orders inferences for triage
type Ranker struct {
	highSignal map[string]struct{}
}

// NewRanker creates a ranker with the given high-signal source tags.
// Nil falls back to DefaultHighSignalSources.
func NewRanker(sources []string) *Ranker {
	if sources == nil {
		sources = DefaultHighSignalSources
	}
	hs := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		hs[strings.ToLower(s)] = struct{}{}
	}
	return &Ranker{highSignal: hs}
}

// Score estimates review-worthiness for a single inference
func (r *Ranker) Score(inf model.Inference) float64 {
	score := inf.Confidence

	if len(inf.SourceIDs) >= 2 {
		score *= multiSourceBonus
	}

	switch length := len(inf.Inference); {
	case length > longThreshold:
		score *= longPenalty
	case length > mediumThreshold:
		score *= mediumPenalty
	}

	if _, ok := r.highSignal[strings.ToLower(inf.Source)]; ok {
		score *= sourceBonus
	}

	return score
}

// Rank returns a copy of infs sorted by descending score, stable for ties.
// Pure: the input slice is not mutated.
func (r *Ranker) Rank(infs []model.Inference) []model.Inference {
	out := make([]model.Inference, len(infs))
	copy(out, infs)
	sort.SliceStable(out, func(i, j int) bool {
		return r.Score(out[i]) > r.Score(out[j])
	})
	return out
}
