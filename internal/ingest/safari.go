package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/selfatlas/selfatlas/internal/model"
)

// safariMaxVisits bounds one ingestion pass over a history database
const safariMaxVisits = 5000

// cocoaEpoch is the reference date Safari timestamps count seconds from
var cocoaEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// urlCategories is an ordered substring-to-category table; first match wins
var urlCategories = []struct {
	Substring string
	Category  string
}{
	{"github.com", "dev"},
	{"stackoverflow.com", "dev"},
	{"youtube.com", "video"},
	{"wikipedia.org", "reference"},
}

// SafariIngestor reads Safari browsing history from a History.db file,
// which is itself a SQLite database.
type SafariIngestor struct {
	path string
}

// NewSafariIngestor creates an ingestor for the given History.db
func NewSafariIngestor(path string) *SafariIngestor {
	return &SafariIngestor{path: path}
}

// Source returns the channel tag
func (in *SafariIngestor) Source() string {
	return "safari"
}

// Ingest reads visits newest-first. Each visit becomes one raw item with a
// deterministic safari:<visit-id> id; the URL category and page title land
// in metadata. The database is opened read-only so a live browser profile
// is never mutated.
func (in *SafariIngestor) Ingest(ctx context.Context) ([]model.RawItem, error) {
	db, err := sql.Open("sqlite", "file:"+in.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx,
		`SELECT hv.id, hi.url, hi.visit_count, hv.visit_time, hv.title
		 FROM history_visits hv
		 JOIN history_items hi ON hi.id = hv.history_item
		 ORDER BY hv.visit_time DESC
		 LIMIT ?`, safariMaxVisits)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.RawItem
	for rows.Next() {
		var (
			visitID    int64
			rawURL     string
			visitCount int64
			visitTime  float64
			title      sql.NullString
		)
		if err := rows.Scan(&visitID, &rawURL, &visitCount, &visitTime, &title); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}

		metadata := map[string]any{
			"category":    CategorizeURL(rawURL),
			"visit_count": visitCount,
		}
		if title.Valid && title.String != "" {
			metadata["title"] = title.String
		}

		content := rawURL
		if title.Valid && title.String != "" {
			content = fmt.Sprintf("Visited: %s (%s)", title.String, rawURL)
		}

		items = append(items, model.RawItem{
			ID:        fmt.Sprintf("safari:%d", visitID),
			Source:    in.Source(),
			Content:   content,
			Timestamp: cocoaEpoch.Add(time.Duration(visitTime * float64(time.Second))),
			Metadata:  metadata,
		})
	}
	return items, rows.Err()
}

// CategorizeURL classifies a URL by host substring
func CategorizeURL(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	lower := strings.ToLower(host)
	for _, c := range urlCategories {
		if strings.Contains(lower, c.Substring) {
			return c.Category
		}
	}
	return "other"
}
