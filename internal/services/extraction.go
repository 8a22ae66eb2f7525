package services

import (
	"context"
	"strings"

	"bidflow/internal/models"
)

// Extractor pulls bid fields out of one email. Both strategies (hosted chat
// completion and local labeler) implement it. A strategy must never fail the
// batch: on an unrecoverable per-message error it logs, returns an all-null
// record, and lets the caller continue.
type Extractor interface {
	Extract(ctx context.Context, subject, body string) models.BidRecord
	Name() string
}

// Label prefixes expected in the hosted model's response, matched per line.
const (
	labelProjectName = "Project Name:"
	labelContractor  = "Contractor:"
	labelBidDueDate  = "Bid Due Date:"
	labelJobWalk     = "Job Walk:"
	labelDescription = "Description:"
	// Older prompt revisions asked for "Project Description"; accept both.
	labelProjectDescription = "Project Description:"
)

// notSpecified values the model emits for fields it could not find.
var notSpecified = map[string]bool{
	"not specified": true,
	"not mentioned": true,
	"not provided":  true,
	"none":          true,
	"n/a":           true,
	"":              true,
}

// ParseLabeledResponse parses the model's labeled-line response into a
// record. Lines without a known label prefix are ignored; a "Not specified"
// value yields an empty field. The service enforces no schema, so this
// line-prefix parse is the contract.
func ParseLabeledResponse(content string) models.BidRecord {
	var record models.BidRecord
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		// Some responses wrap labels in markdown emphasis.
		line = strings.TrimLeft(line, "*")
		switch {
		case strings.HasPrefix(line, labelProjectName):
			record.ProjectName = labelValue(line, labelProjectName)
		case strings.HasPrefix(line, labelContractor):
			record.Contractor = labelValue(line, labelContractor)
		case strings.HasPrefix(line, labelBidDueDate):
			record.BidDueDate = labelValue(line, labelBidDueDate)
		case strings.HasPrefix(line, labelJobWalk):
			record.JobWalk = labelValue(line, labelJobWalk)
		case strings.HasPrefix(line, labelProjectDescription):
			record.Description = labelValue(line, labelProjectDescription)
		case strings.HasPrefix(line, labelDescription):
			record.Description = labelValue(line, labelDescription)
		}
	}
	return record
}

func labelValue(line, label string) string {
	value := strings.TrimSpace(strings.TrimPrefix(line, label))
	value = strings.Trim(value, "*")
	value = strings.TrimSpace(value)
	if notSpecified[strings.ToLower(value)] {
		return ""
	}
	return value
}

// CleanSubject strips reply/forward/invite prefixes so subjects compare and
// cluster on their real content.
func CleanSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		lower := strings.ToLower(s)
		trimmed := s
		for _, prefix := range []string{"re:", "fw:", "fwd:", "bid invite:"} {
			if strings.HasPrefix(lower, prefix) {
				trimmed = strings.TrimSpace(s[len(prefix):])
				break
			}
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
