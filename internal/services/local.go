package services

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"bidflow/internal/models"
	"bidflow/internal/nermodel"
)

// Literal date patterns used as a fallback when the labeler accepts no date
// span: "Month DD, YYYY" and "MM/DD/YYYY".
var fallbackDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}, \d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
}

// Fuzzy rank threshold for matching a subject against an already-seen
// project name. Levenshtein distance, lower is closer.
const subjectMatchMaxRank = 12

// LocalExtractor is the offline strategy: a trained sequence labeler over the
// body, with a confidence floor, strict date validation, regex date fallback,
// and two subject-based backups for the project name. Values recovered by a
// backup are marked so they stand out in the report:
//
//	"?"  suffix - date found by regex, not the labeler
//	"**" prefix - project name fuzzy-matched from an earlier email's subject
//	"&"  prefix - project name taken from running the labeler on the subject
type LocalExtractor struct {
	model     *nermodel.Model
	threshold float64

	// Project names seen so far in this run, for the fuzzy subject backup.
	knownProjects []string
}

// NewLocalExtractor wraps a trained model. threshold 0 accepts every span.
func NewLocalExtractor(model *nermodel.Model, threshold float64) *LocalExtractor {
	return &LocalExtractor{model: model, threshold: threshold}
}

func (e *LocalExtractor) Name() string { return "local" }

func (e *LocalExtractor) Extract(ctx context.Context, subject, body string) models.BidRecord {
	record := models.BidRecord{SourceSubject: subject}

	for _, span := range e.model.Predict(body) {
		if span.Confidence < e.threshold {
			continue
		}
		switch span.Label {
		case nermodel.LabelProjectName:
			if record.ProjectName == "" {
				record.ProjectName = span.Text
			}
		case nermodel.LabelContractor:
			if record.Contractor == "" {
				record.Contractor = span.Text
			}
		case nermodel.LabelBidDueDate:
			// Only accept spans that really parse as dates.
			if record.BidDueDate == "" && ValidDate(span.Text) {
				record.BidDueDate = span.Text
			}
		}
	}

	if record.BidDueDate == "" {
		if date := scanForDate(body); date != "" {
			record.BidDueDate = date + "?"
		}
	}

	if record.ProjectName == "" {
		record.ProjectName = e.projectFromKnown(subject)
	}
	if record.ProjectName == "" {
		record.ProjectName = e.projectFromSubject(subject)
	}
	if record.ProjectName != "" {
		e.knownProjects = append(e.knownProjects, strings.TrimLeft(record.ProjectName, "*&"))
	}

	return record
}

func scanForDate(body string) string {
	for _, pattern := range fallbackDatePatterns {
		if match := pattern.FindString(body); match != "" {
			return match
		}
	}
	return ""
}

// projectFromKnown fuzzy-matches the subject against project names already
// seen this run; bid invites for the same project tend to repeat the name in
// the subject line.
func (e *LocalExtractor) projectFromKnown(subject string) string {
	cleaned := strings.ToLower(CleanSubject(subject))
	if cleaned == "" || len(e.knownProjects) == 0 {
		return ""
	}

	best := ""
	bestRank := subjectMatchMaxRank + 1
	for _, name := range e.knownProjects {
		rank := fuzzy.RankMatchNormalizedFold(strings.ToLower(name), cleaned)
		if rank >= 0 && rank < bestRank {
			best, bestRank = name, rank
		}
	}
	if best == "" {
		return ""
	}
	return "**" + best
}

// projectFromSubject is the last resort: run the labeler over the subject
// line itself.
func (e *LocalExtractor) projectFromSubject(subject string) string {
	log.Printf("Attempting to extract project name from subject: %s", subject)
	for _, span := range e.model.Predict(CleanSubject(subject)) {
		if span.Label == nermodel.LabelProjectName {
			return "&" + span.Text
		}
	}
	return ""
}
