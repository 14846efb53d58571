package model

import (
	"strconv"
	"strings"
)

// Candidate is an inference candidate before it passes the lint gate.
//
// Optional fields are nullable so that absent and present-but-empty are
// distinguishable: a nil KillTest means no falsifier was supplied, while an
// empty non-nil one means the producer supplied a blank falsifier (the lint
// gate treats both as missing, since a blank falsifier falsifies nothing).
type Candidate struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Content   string `json:"content"`
	Statement string `json:"inference"` // The claim text ("inference" in the wire format)

	// Confidence is kept in its raw form so the lint gate can flag
	// unparsable values instead of losing them at decode time. Nil means
	// no confidence was supplied.
	Confidence *string `json:"confidence,omitempty"`

	KillTest       *string  `json:"kill_test,omitempty"`       // Condition under which the claim would be false
	Alternatives   []string `json:"alternatives,omitempty"`    // Third alternatives for dichotomy claims
	ValidityChecks []string `json:"validity_checks,omitempty"` // Measurement-vs-hypothesis checks for absence claims
	SourceIDs      []string `json:"source_ids,omitempty"`

	Status Status `json:"status"`
	Mock   bool   `json:"mock,omitempty"` // True when produced by the degraded-mode generator
}

// ConfidenceValue parses the raw confidence. Returns 0 when absent.
func (c Candidate) ConfidenceValue() (float64, error) {
	if c.Confidence == nil {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(*c.Confidence), 64)
}

// ConfidenceString formats a numeric confidence for a candidate
func ConfidenceString(v float64) *string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	return &s
}

// Inference converts a lint-passing candidate into a persistable inference.
// The confidence falls back to zero when unparsable; callers that enforce
// the lint gate never hit that path.
func (c Candidate) Inference() Inference {
	conf, err := c.ConfidenceValue()
	if err != nil {
		conf = 0
	}
	status := c.Status
	if status == "" {
		status = StatusPending
	}
	return Inference{
		ID:         c.ID,
		Source:     c.Source,
		Content:    c.Content,
		Inference:  c.Statement,
		Confidence: conf,
		Status:     status,
		SourceIDs:  c.SourceIDs,
	}
}
