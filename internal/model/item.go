package model

import "time"

// RawItem represents a single captured observation from a data source
type RawItem struct {
	ID        string         `json:"id"`                 // Stable across re-ingestion (source + native id)
	Source    string         `json:"source"`             // Originating channel tag (e.g., "chatgpt", "safari")
	Content   string         `json:"content"`            // Extracted text payload
	Timestamp time.Time      `json:"timestamp"`          // When the observation occurred, not when ingested
	Metadata  map[string]any `json:"metadata,omitempty"` // Source-specific annotations (detected signals, categories)
}
