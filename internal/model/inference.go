package model

import "time"

// Status tracks an inference through the triage state machine
type Status string

const (
	StatusPending  Status = "pending"  // Initial state, awaiting human review
	StatusApproved Status = "approved" // Terminal: accepted for export
	StatusRejected Status = "rejected" // Terminal: discarded from export
)

// IsTerminal reports whether the status is a terminal triage state
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether the status is one of the known states
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Inference is a natural-language claim about the user derived from raw data.
// ID, Source, Content, Inference and Confidence are immutable once persisted;
// only Status and UserNotes change, and only through the triage transition.
type Inference struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`     // Provenance: originating channel
	Content    string    `json:"content"`    // Provenance: the raw snippet it was derived from
	Inference  string    `json:"inference"`  // The claim text
	Confidence float64   `json:"confidence"` // In [0.0, 1.0]
	Status     Status    `json:"status"`
	UserNotes  *string   `json:"user_notes,omitempty"` // Attached at triage time
	CreatedAt  time.Time `json:"created_at"`           // FIFO triage ordering key

	// SourceIDs lists the raw item ids behind the claim when the producer
	// tracks them. Not persisted; used by the triage ranker.
	SourceIDs []string `json:"source_ids,omitempty"`
}
