package services

import (
	"context"
	"log"
	"strings"
	"time"

	"bidflow/internal/mailstore"
	"bidflow/internal/models"
)

// Archiver stores the consolidated output of a run somewhere durable. The
// pipeline treats it as optional: a nil Archiver disables archiving.
type Archiver interface {
	ArchiveRun(ctx context.Context, folderPath string, projects []models.ConsolidatedProject) error
}

// Pipeline wires one extraction run end to end: select, extract, normalize,
// overlay corrections, tag, consolidate, review, report, archive. All steps
// run synchronously on the calling goroutine; per-message failures are
// isolated so one bad email never aborts the batch.
type Pipeline struct {
	Extractor   Extractor
	Corrections *CorrectionStore
	// Prompter drives the interactive duplicate review; nil skips review
	// (the web form and scheduled runs use this).
	Prompter   Prompter
	ReportPath string
	Archive    Archiver
	Verbose    bool
}

// Run processes the selected slice of one folder. It is RunAll over a single
// located folder.
func (p *Pipeline) Run(ctx context.Context, folder mailstore.Folder, folderPath string, sel mailstore.Selection) ([]models.ConsolidatedProject, models.RunStats, error) {
	return p.RunAll(ctx, []mailstore.Located{{Path: folderPath, Folder: folder}}, sel)
}

// RunAll applies the selection to every located folder, processes the
// combined batch, and consolidates once across all of them.
func (p *Pipeline) RunAll(ctx context.Context, located []mailstore.Located, sel mailstore.Selection) ([]models.ConsolidatedProject, models.RunStats, error) {
	stats := models.RunStats{StartedAt: time.Now()}
	paths := make([]string, len(located))
	for i, loc := range located {
		paths[i] = loc.Path
	}
	stats.Folder = strings.Join(paths, "; ")

	corrections := p.Corrections.Load()

	var messages []mailstore.Message
	for _, loc := range located {
		selected, err := mailstore.SelectMessages(loc.Folder, sel, time.Now())
		if err != nil {
			return nil, stats, err
		}
		messages = append(messages, selected...)
	}
	stats.Selected = len(messages)
	log.Printf("Processing %d emails after filtering.", len(messages))

	var records []models.BidRecord
	for _, message := range messages {
		if p.Verbose {
			log.Printf("Processing email with subject: %s", message.Subject())
		}

		record := p.Extractor.Extract(ctx, message.Subject(), message.Body())
		// Judge success before the sentinel substitution fills the date in.
		if record.Empty() {
			stats.Errors++
		} else {
			stats.Extracted++
		}
		record.BidDueDate = normalizeKeepingMarker(record.BidDueDate)
		record = ApplyCorrection(record, corrections)
		if TagProcessed(message) {
			stats.Tagged++
		}
		records = append(records, record)
	}

	projects := Consolidate(records)

	if p.Prompter != nil {
		reviewer := NewReviewer(p.Prompter, p.Corrections, corrections)
		reviewed, err := reviewer.Review(projects)
		if err != nil {
			return nil, stats, err
		}
		projects = reviewed
	}
	stats.Projects = len(projects)

	if p.ReportPath != "" {
		log.Printf("Saving data to Excel file: %s", p.ReportPath)
		if err := WriteReport(p.ReportPath, projects); err != nil {
			return nil, stats, err
		}
		log.Printf("✅ Data successfully saved to %s", p.ReportPath)
	}

	if p.Archive != nil {
		if err := p.Archive.ArchiveRun(ctx, stats.Folder, projects); err != nil {
			// Archiving is best effort; the report already exists.
			log.Printf("⚠️  Failed to archive run: %v", err)
		}
	}

	stats.Duration = time.Since(stats.StartedAt)
	return projects, stats, nil
}

// normalizeKeepingMarker normalizes an extracted due date while preserving
// the "?" regex-fallback marker the local strategy affixes.
func normalizeKeepingMarker(date string) string {
	if marked := strings.TrimSuffix(date, "?"); marked != date {
		return NormalizeDueDate(marked) + "?"
	}
	return NormalizeDueDate(date)
}
