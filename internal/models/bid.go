package models

import "time"

// SentinelDate is written in place of a bid due date that could not be parsed.
// The trailing asterisks keep failed rows visually distinguishable in the report.
const SentinelDate = "01/01/11**"

// UnknownProject is the placeholder group for records whose project name
// could not be extracted. Records are retained under it rather than dropped.
const UnknownProject = "(unknown project)"

// BidRecord holds the fields extracted from a single email. Fields that were
// not found are empty strings. A record is immutable after extraction except
// for the correction overlay applied during accumulation.
type BidRecord struct {
	ProjectName   string `json:"projectName"`
	Contractor    string `json:"contractor"`
	BidDueDate    string `json:"bidDueDate"`
	JobWalk       string `json:"jobWalk"`
	Description   string `json:"description"`
	SourceSubject string `json:"sourceSubject"`
}

// Empty reports whether extraction found nothing at all.
func (r BidRecord) Empty() bool {
	return r.ProjectName == "" && r.Contractor == "" && r.BidDueDate == "" &&
		r.JobWalk == "" && r.Description == ""
}

// Correction is a user-supplied override for a project, persisted between
// runs. Only contractor and bid due date are overridden; other fields pass
// through unchanged. JSON keys match the legacy corrections file layout.
type Correction struct {
	Contractor string `json:"Contractor"`
	BidDueDate string `json:"Bid Due Date"`
}

// ConsolidatedProject is one output row: all records sharing a project name
// merged into a single summary.
type ConsolidatedProject struct {
	ProjectName     string   `json:"projectName"`
	Contractors     []string `json:"contractors"` // sorted, deduplicated
	BidDueDate      string   `json:"bidDueDate"`  // first non-empty observed
	JobWalk         string   `json:"jobWalk"`
	Description     string   `json:"description"`
	ContractorCount int      `json:"contractorCount"`
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Folder    string
	Selected  int
	Extracted int
	Tagged    int
	Errors    int
	Projects  int
	StartedAt time.Time
	Duration  time.Duration
}
