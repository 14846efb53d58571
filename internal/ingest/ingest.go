// Package ingest parses source-specific archives into raw items. Ingestors
// derive stable ids from source-native identifiers so re-ingesting the same
// archive upserts rather than duplicates.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/selfatlas/selfatlas/internal/model"
)

// Ingestor produces raw items from one source archive
type Ingestor interface {
	// Source returns the channel tag stamped on produced items
	Source() string

	// Ingest parses the archive and returns the captured observations
	Ingest(ctx context.Context) ([]model.RawItem, error)
}

// New creates the ingestor registered for the given source tag
func New(source, path string) (Ingestor, error) {
	switch strings.ToLower(source) {
	case "chatgpt":
		return NewChatGPTIngestor(path), nil
	case "safari":
		return NewSafariIngestor(path), nil
	default:
		return nil, fmt.Errorf("unknown ingest source: %s (supported: chatgpt, safari)", source)
	}
}
