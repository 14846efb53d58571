// Package secscan guards the export path against accidental secret leakage.
//
// The scan is heuristic: any positive hit blocks export and requires manual
// sanitization. Callers must report only the hit count — samples are capped
// at a short prefix so the scan itself cannot leak what it found.
package secscan

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// samplePrefixLen caps how much of a matched secret is retained
const samplePrefixLen = 10

// Hit records one detector match. Sample is a truncated prefix, never the
// full match.
type Hit struct {
	Pattern string `json:"pattern"`
	Sample  string `json:"sample"`
}

//go:embed patterns.yaml
var defaultPatternsYAML []byte

type patternsFile struct {
	Patterns []string `yaml:"patterns"`
}

// DefaultPatterns returns the built-in ordered detector list
func DefaultPatterns() []string {
	var pf patternsFile
	if err := yaml.Unmarshal(defaultPatternsYAML, &pf); err != nil {
		panic(fmt.Sprintf("secscan: embedded patterns.yaml: %v", err))
	}
	return pf.Patterns
}

// Scanner runs an ordered list of compiled secret detectors
type Scanner struct {
	patterns []string
	compiled []*regexp.Regexp
}

// NewScanner compiles the given ordered patterns (case-insensitive)
func NewScanner(patterns []string) (*Scanner, error) {
	s := &Scanner{patterns: patterns}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile secret pattern %q: %w", p, err)
		}
		s.compiled = append(s.compiled, re)
	}
	return s, nil
}

// NewDefaultScanner builds a scanner over the built-in patterns
func NewDefaultScanner() *Scanner {
	s, err := NewScanner(DefaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("secscan: default patterns: %v", err))
	}
	return s
}

// Scan runs every detector over text. Safe is true only when no detector
// matched.
func (s *Scanner) Scan(text string) (safe bool, hits []Hit) {
	for i, re := range s.compiled {
		for _, m := range re.FindAllString(text, -1) {
			hits = append(hits, Hit{
				Pattern: s.patterns[i],
				Sample:  truncate(m),
			})
		}
	}
	return len(hits) == 0, hits
}

func truncate(m string) string {
	if len(m) > samplePrefixLen {
		return m[:samplePrefixLen] + "..."
	}
	return m + "..."
}
