package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const chatgptExport = `[
  {
    "id": "conv-1",
    "conversation_id": "conv-1",
    "title": "Dinner planning",
    "mapping": {
      "node-1": {
        "message": {
          "id": "msg-1",
          "author": {"role": "user"},
          "create_time": 1717200000.5,
          "content": {"content_type": "text", "parts": ["What vegan dishes work for a potluck?"]}
        }
      },
      "node-2": {
        "message": {
          "id": "msg-2",
          "author": {"role": "assistant"},
          "create_time": 1717200001,
          "content": {"content_type": "text", "parts": ["Here are some ideas..."]}
        }
      },
      "node-3": {
        "message": {
          "id": "msg-3",
          "author": {"role": "user"},
          "create_time": 1717200060,
          "content": {"content_type": "text", "parts": ["No that's not what I meant, try again"]}
        }
      },
      "node-4": {
        "message": {
          "id": "msg-4",
          "author": {"role": "user"},
          "create_time": 1717200120,
          "content": {"content_type": "text", "parts": ["   "]}
        }
      },
      "node-5": {"message": null}
    }
  }
]`

func TestChatGPTIngestor_Ingest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte(chatgptExport), 0o600); err != nil {
		t.Fatal(err)
	}

	items, err := NewChatGPTIngestor(path).Ingest(context.Background())
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	// Assistant, blank, and null-message nodes are dropped
	if len(items) != 2 {
		t.Fatalf("expected 2 user messages, got %d", len(items))
	}

	byID := map[string]int{}
	for i, item := range items {
		byID[item.ID] = i
		if item.Source != "chatgpt" {
			t.Errorf("expected source chatgpt, got %q", item.Source)
		}
		if item.Metadata["conversation_id"] != "conv-1" {
			t.Errorf("missing conversation id in metadata: %v", item.Metadata)
		}
		if item.Metadata["title"] != "Dinner planning" {
			t.Errorf("missing title in metadata: %v", item.Metadata)
		}
	}

	first, ok := byID["chatgpt:conv-1:msg-1"]
	if !ok {
		t.Fatalf("deterministic id missing, got %v", byID)
	}
	if items[first].Content != "What vegan dishes work for a potluck?" {
		t.Errorf("unexpected content: %q", items[first].Content)
	}
	if got := items[first].Timestamp; !got.Equal(time.Unix(1717200000, int64(500*time.Millisecond)).UTC()) {
		t.Errorf("unexpected timestamp: %v", got)
	}
	if _, tagged := items[first].Metadata["signals"]; tagged {
		t.Error("plain question must not carry frustration signals")
	}

	frustrated, ok := byID["chatgpt:conv-1:msg-3"]
	if !ok {
		t.Fatalf("frustrated message missing, got %v", byID)
	}
	signals, ok := items[frustrated].Metadata["signals"].([]string)
	if !ok || len(signals) != 2 {
		t.Fatalf("expected 2 frustration signals, got %v", items[frustrated].Metadata["signals"])
	}
}

func TestChatGPTIngestor_Ingest_BadInput(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewChatGPTIngestor(filepath.Join(dir, "missing.json")).Ingest(context.Background()); err == nil {
		t.Error("missing file must error")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewChatGPTIngestor(bad).Ingest(context.Background()); err == nil {
		t.Error("malformed export must error")
	}
}

func TestDetectFrustration(t *testing.T) {
	tests := []struct {
		prompt string
		want   []string
	}{
		{"Please TRY AGAIN with shorter output", []string{"retry_request"}},
		{"no that's not what i meant", []string{"clarification"}},
		{"you're not understanding me, try again", []string{"retry_request", "comprehension_complaint"}},
		{"thanks, that worked", nil},
	}
	for _, tt := range tests {
		got := DetectFrustration(tt.prompt)
		if len(got) != len(tt.want) {
			t.Errorf("DetectFrustration(%q) = %v, want %v", tt.prompt, got, tt.want)
			continue
		}
		seen := map[string]bool{}
		for _, s := range got {
			seen[s] = true
		}
		for _, w := range tt.want {
			if !seen[w] {
				t.Errorf("DetectFrustration(%q) missing %s, got %v", tt.prompt, w, got)
			}
		}
	}
}

// seedSafariHistory writes a minimal History.db with the two tables the
// ingestor joins over
func seedSafariHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "History.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	stmts := []string{
		`CREATE TABLE history_items (id INTEGER PRIMARY KEY, url TEXT, visit_count INTEGER)`,
		`CREATE TABLE history_visits (id INTEGER PRIMARY KEY, history_item INTEGER, visit_time REAL, title TEXT)`,
		`INSERT INTO history_items VALUES (1, 'https://github.com/golang/go/issues/1', 12)`,
		`INSERT INTO history_items VALUES (2, 'https://example.com/recipes', 1)`,
		`INSERT INTO history_visits VALUES (10, 1, 700000000.0, 'golang/go issue tracker')`,
		`INSERT INTO history_visits VALUES (11, 2, 700000100.0, NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	return path
}

func TestSafariIngestor_Ingest(t *testing.T) {
	path := seedSafariHistory(t)

	items, err := NewSafariIngestor(path).Ingest(context.Background())
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(items))
	}

	// Newest visit first
	if items[0].ID != "safari:11" || items[1].ID != "safari:10" {
		t.Errorf("expected newest-first order, got %s then %s", items[0].ID, items[1].ID)
	}

	// Untitled visit falls back to the bare URL
	if items[0].Content != "https://example.com/recipes" {
		t.Errorf("unexpected content: %q", items[0].Content)
	}
	if items[0].Metadata["category"] != "other" {
		t.Errorf("expected category other, got %v", items[0].Metadata["category"])
	}

	gh := items[1]
	if gh.Source != "safari" {
		t.Errorf("expected source safari, got %q", gh.Source)
	}
	if gh.Content != "Visited: golang/go issue tracker (https://github.com/golang/go/issues/1)" {
		t.Errorf("unexpected content: %q", gh.Content)
	}
	if gh.Metadata["category"] != "dev" {
		t.Errorf("expected category dev, got %v", gh.Metadata["category"])
	}
	if gh.Metadata["visit_count"] != int64(12) {
		t.Errorf("expected visit_count 12, got %v", gh.Metadata["visit_count"])
	}
	want := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC).Add(700000000 * time.Second)
	if !gh.Timestamp.Equal(want) {
		t.Errorf("expected %v, got %v", want, gh.Timestamp)
	}
}

func TestCategorizeURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/user/repo", "dev"},
		{"https://stackoverflow.com/questions/1", "dev"},
		{"https://www.youtube.com/watch?v=abc", "video"},
		{"https://en.wikipedia.org/wiki/Go", "reference"},
		{"https://news.example.com/story", "other"},
		{"not a url", "other"},
	}
	for _, tt := range tests {
		if got := CategorizeURL(tt.url); got != tt.want {
			t.Errorf("CategorizeURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestNew_Factory(t *testing.T) {
	in, err := New("ChatGPT", "export.json")
	if err != nil || in.Source() != "chatgpt" {
		t.Errorf("chatgpt factory: %v err=%v", in, err)
	}
	in, err = New("safari", "History.db")
	if err != nil || in.Source() != "safari" {
		t.Errorf("safari factory: %v err=%v", in, err)
	}
	if _, err := New("pigeon", "x"); err == nil {
		t.Error("unknown source must error")
	}
}
