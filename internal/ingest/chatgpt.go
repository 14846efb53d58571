package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/selfatlas/selfatlas/internal/model"
)

// frustrationPatterns map prompt phrases to signal tags recorded in item
// metadata. Ordered configuration data.
var frustrationPatterns = []struct {
	Phrase string
	Signal string
}{
	{"no that's not what i meant", "clarification"},
	{"try again", "retry_request"},
	{"you're not understanding", "comprehension_complaint"},
}

// ChatGPTIngestor parses a ChatGPT data export (conversations.json)
type ChatGPTIngestor struct {
	path string
}

// NewChatGPTIngestor creates an ingestor for the given conversations.json
func NewChatGPTIngestor(path string) *ChatGPTIngestor {
	return &ChatGPTIngestor{path: path}
}

// Source returns the channel tag
func (in *ChatGPTIngestor) Source() string {
	return "chatgpt"
}

// Export format: an array of conversations, each holding a mapping of
// message nodes keyed by node id.
type chatgptConversation struct {
	ID             string                 `json:"id"`
	ConversationID string                 `json:"conversation_id"`
	Title          string                 `json:"title"`
	Mapping        map[string]chatgptNode `json:"mapping"`
}

type chatgptNode struct {
	Message *chatgptMessage `json:"message"`
}

type chatgptMessage struct {
	ID         string         `json:"id"`
	Author     chatgptAuthor  `json:"author"`
	CreateTime float64        `json:"create_time"`
	Content    chatgptContent `json:"content"`
}

type chatgptAuthor struct {
	Role string `json:"role"`
}

type chatgptContent struct {
	ContentType string `json:"content_type"`
	Parts       []any  `json:"parts"`
}

// Ingest extracts the user-authored messages from the export. Each message
// becomes one raw item with a deterministic chatgpt:<conversation>:<message>
// id; detected frustration signals land in metadata.
func (in *ChatGPTIngestor) Ingest(ctx context.Context) ([]model.RawItem, error) {
	data, err := os.ReadFile(in.path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var conversations []chatgptConversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	var items []model.RawItem
	for _, conv := range conversations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		convID := conv.ConversationID
		if convID == "" {
			convID = conv.ID
		}

		for _, node := range conv.Mapping {
			msg := node.Message
			if msg == nil || msg.Author.Role != "user" {
				continue
			}
			if msg.Content.ContentType != "" && msg.Content.ContentType != "text" {
				continue
			}
			text := joinParts(msg.Content.Parts)
			if strings.TrimSpace(text) == "" {
				continue
			}

			metadata := map[string]any{
				"conversation_id": convID,
			}
			if conv.Title != "" {
				metadata["title"] = conv.Title
			}
			if signals := DetectFrustration(text); len(signals) > 0 {
				metadata["signals"] = signals
			}

			items = append(items, model.RawItem{
				ID:        fmt.Sprintf("chatgpt:%s:%s", convID, msg.ID),
				Source:    in.Source(),
				Content:   text,
				Timestamp: unixFloat(msg.CreateTime),
				Metadata:  metadata,
			})
		}
	}
	return items, nil
}

// DetectFrustration returns signal tags for frustration phrases found in
// the prompt
func DetectFrustration(prompt string) []string {
	lower := strings.ToLower(prompt)
	var signals []string
	for _, p := range frustrationPatterns {
		if strings.Contains(lower, p.Phrase) {
			signals = append(signals, p.Signal)
		}
	}
	return signals
}

func joinParts(parts []any) string {
	var b strings.Builder
	for _, p := range parts {
		if s, ok := p.(string); ok {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(s)
		}
	}
	return b.String()
}

func unixFloat(sec float64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}
