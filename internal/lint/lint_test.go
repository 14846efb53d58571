package lint

import (
	"testing"

	"github.com/selfatlas/selfatlas/internal/model"
)

func strPtr(s string) *string { return &s }

func codes(issues []Issue) map[string]bool {
	out := map[string]bool{}
	for _, i := range issues {
		out[i.Code] = true
	}
	return out
}

func TestGate_Lint_EmptyShortCircuits(t *testing.T) {
	g := NewGate(DefaultConfig())

	issues := g.Lint(model.Candidate{Statement: "   "})
	if len(issues) != 1 {
		t.Fatalf("expected exactly 1 issue for empty text, got %d: %v", len(issues), issues)
	}
	if issues[0].Code != CodeEmpty {
		t.Errorf("expected code %q, got %q", CodeEmpty, issues[0].Code)
	}
}

func TestGate_Lint_NeverSatisfiesKillTestButNeedsValidityCheck(t *testing.T) {
	g := NewGate(DefaultConfig())

	// "never" counts as a falsifier hook, so no_kill_test is skipped,
	// but it is also an absence claim, so no_validity_check fires.
	issues := g.Lint(model.Candidate{Statement: "User never replies to group chats."})
	got := codes(issues)
	if got[CodeNoKillTest] {
		t.Error("no_kill_test should be skipped when text contains 'never'")
	}
	if !got[CodeNoValidityCheck] {
		t.Errorf("expected no_validity_check, got %v", issues)
	}
}

func TestGate_Lint_Trivial(t *testing.T) {
	g := NewGate(DefaultConfig())

	issues := g.Lint(model.Candidate{
		Statement: "The user exists and sends messages.",
		KillTest:  strPtr("If no account activity is found, this is false."),
	})
	if !codes(issues)[CodeTrivial] {
		t.Errorf("expected trivial issue, got %v", issues)
	}
}

func TestGate_Lint_ConfidenceRules(t *testing.T) {
	g := NewGate(DefaultConfig())
	base := model.Candidate{
		Statement: "If asked, user picks the window seat.",
	}

	tests := []struct {
		name       string
		confidence *string
		wantCode   string
	}{
		{"absent skips check", nil, ""},
		{"valid in range", strPtr("0.85"), ""},
		{"unparsable", strPtr("very sure"), CodeConfidenceParse},
		{"out of range", strPtr("1.5"), CodeConfidenceRange},
		{"negative", strPtr("-0.1"), CodeConfidenceRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.Confidence = tt.confidence
			got := codes(g.Lint(c))
			if tt.wantCode == "" {
				if got[CodeConfidenceParse] || got[CodeConfidenceRange] {
					t.Errorf("expected no confidence issue, got %v", got)
				}
				return
			}
			if !got[tt.wantCode] {
				t.Errorf("expected %s, got %v", tt.wantCode, got)
			}
		})
	}
}

func TestGate_Lint_Dichotomy(t *testing.T) {
	g := NewGate(DefaultConfig())

	c := model.Candidate{
		Statement: "User is either a night owl or an early riser.",
	}
	if !codes(g.Lint(c))[CodeNoThirdAlternative] {
		t.Error("expected no_third_alternative for unaddressed dichotomy")
	}

	// Supplying alternatives resolves it, even an explicit empty list
	c.Alternatives = []string{"both could be wrong"}
	if codes(g.Lint(c))[CodeNoThirdAlternative] {
		t.Error("alternatives present, issue should not fire")
	}
}

func TestGate_Lint_AccumulatesMultipleIssues(t *testing.T) {
	g := NewGate(DefaultConfig())

	// Trivial + won't-absence + missing kill test + bad confidence
	c := model.Candidate{
		Statement:  "This is a message the user won't read.",
		Confidence: strPtr("2.0"),
	}
	got := codes(g.Lint(c))
	for _, want := range []string{CodeTrivial, CodeNoValidityCheck, CodeConfidenceRange} {
		if !got[want] {
			t.Errorf("expected %s among issues, got %v", want, got)
		}
	}
}

func TestGate_Lint_CleanCandidatePasses(t *testing.T) {
	g := NewGate(DefaultConfig())

	c := model.Candidate{
		Statement:  "If offered, user chooses vegan meals.",
		Confidence: strPtr("0.88"),
	}
	if issues := g.Lint(c); len(issues) != 0 {
		t.Errorf("expected clean pass, got %v", issues)
	}
	if !g.Passes(c) {
		t.Error("Passes should report true for a clean candidate")
	}
}

func TestGate_Lint_BlankKillTestCountsAsMissing(t *testing.T) {
	g := NewGate(DefaultConfig())

	c := model.Candidate{
		Statement: "User enjoys long hikes.",
		KillTest:  strPtr("   "),
	}
	if !codes(g.Lint(c))[CodeNoKillTest] {
		t.Error("a blank kill test falsifies nothing; expected no_kill_test")
	}
}
