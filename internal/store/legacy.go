package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/selfatlas/selfatlas/internal/model"
)

// legacyRecord mirrors the flat-file JSON format that predates the database.
// Confidence is loosely typed because old files carried both numbers and
// strings.
type legacyRecord struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	Inference  string  `json:"inference"`
	Confidence any     `json:"confidence"`
	Status     string  `json:"status"`
	UserNotes  *string `json:"user_notes"`
}

// ImportLegacyInferences migrates a legacy JSON array of inference records
// into the database. Records whose id already exists are skipped, and
// malformed records are skipped individually — one bad record never aborts
// the import. Returns the number of records inserted.
//
// A missing file is not an error; the import is best-effort by design.
func (s *Store) ImportLegacyInferences(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read legacy file: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse legacy file: %w", err)
	}

	inserted := 0
	for _, raw := range records {
		var rec legacyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue // malformed record, skip
		}
		if rec.ID == "" || rec.Inference == "" {
			continue
		}

		status := model.Status(rec.Status)
		if status == "" {
			status = model.StatusPending
		}
		if !status.Valid() {
			continue
		}

		inf := model.Inference{
			ID:         rec.ID,
			Source:     rec.Source,
			Content:    rec.Content,
			Inference:  rec.Inference,
			Confidence: legacyConfidence(rec.Confidence),
			Status:     status,
			UserNotes:  rec.UserNotes,
		}

		err := s.InsertInference(ctx, inf)
		if errors.Is(err, ErrDuplicateID) {
			continue
		}
		if err != nil {
			continue // per-record isolation: skip, never abort
		}
		inserted++
	}
	return inserted, nil
}

func legacyConfidence(v any) float64 {
	switch c := v.(type) {
	case float64:
		return c
	case string:
		if f, err := strconv.ParseFloat(c, 64); err == nil {
			return f
		}
	}
	return 0
}
