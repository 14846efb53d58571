package rank

import (
	"math"
	"strings"
	"testing"

	"github.com/selfatlas/selfatlas/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRanker_Score_MultiSourceBeatsRawConfidence(t *testing.T) {
	r := NewRanker(nil)

	single := model.Inference{Inference: "claim", Confidence: 0.9, SourceIDs: []string{"a"}}
	multi := model.Inference{Inference: "claim", Confidence: 0.8, SourceIDs: []string{"a", "b"}}

	// 0.8 × 1.15 = 0.92 > 0.9 × 1.0 = 0.90
	if r.Score(multi) <= r.Score(single) {
		t.Errorf("multi-source 0.8 should outrank single-source 0.9: %f vs %f",
			r.Score(multi), r.Score(single))
	}
	if !almostEqual(r.Score(multi), 0.92) {
		t.Errorf("expected 0.92, got %f", r.Score(multi))
	}
}

func TestRanker_Score_LengthPenalty(t *testing.T) {
	r := NewRanker(nil)

	short := model.Inference{Inference: strings.Repeat("x", 100), Confidence: 1.0}
	medium := model.Inference{Inference: strings.Repeat("x", 180), Confidence: 1.0}
	long := model.Inference{Inference: strings.Repeat("x", 300), Confidence: 1.0}

	if !almostEqual(r.Score(short), 1.0) {
		t.Errorf("short claim should have no penalty, got %f", r.Score(short))
	}
	if !almostEqual(r.Score(medium), 0.90) {
		t.Errorf("expected 0.90 for >140 chars, got %f", r.Score(medium))
	}
	if !almostEqual(r.Score(long), 0.80) {
		t.Errorf("expected 0.80 for >220 chars, got %f", r.Score(long))
	}
}

func TestRanker_Score_HighSignalSource(t *testing.T) {
	r := NewRanker(nil)

	plain := model.Inference{Inference: "claim", Confidence: 0.5, Source: "notes"}
	highSignal := model.Inference{Inference: "claim", Confidence: 0.5, Source: "iMessage"}

	if !almostEqual(r.Score(plain), 0.5) {
		t.Errorf("expected 0.5, got %f", r.Score(plain))
	}
	// Case-insensitive source match
	if !almostEqual(r.Score(highSignal), 0.525) {
		t.Errorf("expected 0.525, got %f", r.Score(highSignal))
	}
}

func TestRanker_Rank_DescendingAndStable(t *testing.T) {
	r := NewRanker(nil)

	infs := []model.Inference{
		{ID: "low", Inference: "claim", Confidence: 0.3},
		{ID: "tie-a", Inference: "claim", Confidence: 0.5},
		{ID: "tie-b", Inference: "claim", Confidence: 0.5},
		{ID: "high", Inference: "claim", Confidence: 0.9},
	}

	ranked := r.Rank(infs)

	wantOrder := []string{"high", "tie-a", "tie-b", "low"}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, ranked[i].ID)
		}
	}

	// Pure: input order untouched
	if infs[0].ID != "low" {
		t.Error("Rank must not mutate its input")
	}
}
