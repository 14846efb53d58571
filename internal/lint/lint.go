// Package lint implements the quality gate that keeps low-quality,
// non-falsifiable, or self-deceiving inference candidates out of the triage
// queue. All rules are heuristic and local-only; the gate never mutates
// state — it is a pure predicate over a candidate.
package lint

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/selfatlas/selfatlas/internal/model"
)

// Issue codes
const (
	CodeEmpty              = "empty"
	CodeTrivial            = "trivial"
	CodeConfidenceParse    = "confidence_parse"
	CodeConfidenceRange    = "confidence_range"
	CodeNoKillTest         = "no_kill_test"
	CodeNoThirdAlternative = "no_third_alternative"
	CodeNoValidityCheck    = "no_validity_check"
)

// Issue is a single lint finding. An empty issue list means the candidate
// passes the gate.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Config holds the ordered heuristic lists the rules evaluate against
type Config struct {
	TrivialPhrases []string `yaml:"trivial_phrases"`
	NegationWords  []string `yaml:"negation_words"`
}

//go:embed rules.yaml
var defaultRules []byte

// DefaultConfig returns the built-in rule configuration
func DefaultConfig() Config {
	cfg, err := ParseConfig(defaultRules)
	if err != nil {
		// The embedded file is part of the build; a parse failure is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("lint: embedded rules.yaml: %v", err))
	}
	return cfg
}

// ParseConfig parses a YAML rule configuration
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse lint rules: %w", err)
	}
	return cfg, nil
}

// Gate evaluates candidates against the configured rules
type Gate struct {
	cfg Config
}

// NewGate creates a gate with the given rule configuration
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Lint returns all issues found in the candidate; rules are evaluated
// independently, so one candidate can accumulate several issues. A blank
// statement short-circuits the remaining rules.
func (g *Gate) Lint(c model.Candidate) []Issue {
	var issues []Issue

	text := strings.TrimSpace(c.Statement)
	if text == "" {
		return []Issue{{Code: CodeEmpty, Message: "Inference text is empty."}}
	}
	lower := strings.ToLower(text)

	// 1) Trivial / non-actionable
	for _, phrase := range g.cfg.TrivialPhrases {
		if strings.Contains(lower, phrase) {
			issues = append(issues, Issue{
				Code:    CodeTrivial,
				Message: "Inference appears trivial/non-actionable.",
			})
			break
		}
	}

	// 2) Confidence sanity
	if c.Confidence != nil {
		conf, err := c.ConfidenceValue()
		switch {
		case err != nil:
			issues = append(issues, Issue{
				Code:    CodeConfidenceParse,
				Message: "Confidence is not numeric.",
			})
		case conf < 0.0 || conf > 1.0:
			issues = append(issues, Issue{
				Code:    CodeConfidenceRange,
				Message: "Confidence must be in [0,1].",
			})
		}
	}

	// 3) Discriminability hook: an explicit kill test, or falsifier-like
	// wording in the text itself. A blank kill test counts as missing.
	if c.KillTest == nil || strings.TrimSpace(*c.KillTest) == "" {
		if !strings.Contains(lower, "never") && !strings.Contains(lower, "if") {
			issues = append(issues, Issue{
				Code:    CodeNoKillTest,
				Message: "Missing falsifier/kill-test. Add `kill_test` (e.g., 'If this inference were false, we would observe...').",
			})
		}
	}

	// 4) Third alternative: an A-vs-B dichotomy needs stated alternatives
	// ("both could be wrong")
	if strings.Contains(lower, " either ") && strings.Contains(lower, " or ") && c.Alternatives == nil {
		issues = append(issues, Issue{
			Code:    CodeNoThirdAlternative,
			Message: "Candidate looks like a dichotomy; add `alternatives` including 'both could be wrong'.",
		})
	}

	// 5) Validity check: absence/failure claims must separate measurement
	// failure from hypothesis failure
	for _, word := range g.cfg.NegationWords {
		if strings.Contains(lower, word) {
			if c.ValidityChecks == nil {
				issues = append(issues, Issue{
					Code:    CodeNoValidityCheck,
					Message: "Candidate implies an absence/failure; add `validity_checks` to separate measurement failure vs hypothesis failure.",
				})
			}
			break
		}
	}

	return issues
}

// Passes reports whether the candidate has no lint issues
func (g *Gate) Passes(c model.Candidate) bool {
	return len(g.Lint(c)) == 0
}
