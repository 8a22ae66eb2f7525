package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"bidflow/internal/models"
)

// CorrectionStore persists user corrections between runs as a whole-file JSON
// mapping from project name to the corrected fields. Loading a missing or
// malformed file yields an empty mapping; saving replaces the whole file.
// There is one writer at a time (the interactive loop), so no locking beyond
// that.
type CorrectionStore struct {
	path string
}

// NewCorrectionStore points at the corrections file; nothing is read until
// Load.
func NewCorrectionStore(path string) *CorrectionStore {
	return &CorrectionStore{path: path}
}

// Load reads all corrections. A missing file means no corrections yet, and an
// unreadable or malformed one is logged and treated the same way, so a bad
// file never blocks a run.
func (s *CorrectionStore) Load() map[string]models.Correction {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("⚠️  Could not read corrections %s, starting empty: %v", s.path, err)
		}
		return map[string]models.Correction{}
	}

	corrections := map[string]models.Correction{}
	if err := json.Unmarshal(data, &corrections); err != nil {
		log.Printf("⚠️  Could not parse corrections %s, starting empty: %v", s.path, err)
		return map[string]models.Correction{}
	}
	return corrections
}

// Save replaces the corrections file. Keys are emitted sorted (encoding/json
// sorts map keys), so saving an unmodified load round-trips equivalently.
func (s *CorrectionStore) Save(corrections map[string]models.Correction) error {
	data, err := json.MarshalIndent(corrections, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to serialize corrections: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write corrections %s: %w", s.path, err)
	}
	return nil
}

// ApplyCorrection overlays a stored correction onto a freshly extracted
// record. Only an exact project-name match applies, and only contractor and
// bid due date are overridden.
func ApplyCorrection(record models.BidRecord, corrections map[string]models.Correction) models.BidRecord {
	c, ok := corrections[record.ProjectName]
	if !ok {
		return record
	}
	if c.Contractor != "" {
		record.Contractor = c.Contractor
	}
	if c.BidDueDate != "" {
		record.BidDueDate = c.BidDueDate
	}
	return record
}
