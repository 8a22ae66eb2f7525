package models

import "time"

// ArchivedRun is one pipeline run recorded in the archive database.
type ArchivedRun struct {
	ID           string    `json:"id"`
	Folder       string    `json:"folder"`
	StartedAt    time.Time `json:"startedAt"`
	ProjectCount int       `json:"projectCount"`
}

// ArchivedProject is a consolidated project row as stored in the archive,
// with the bookkeeping columns the live pipeline does not carry.
type ArchivedProject struct {
	ConsolidatedProject
	FirstSeen   time.Time `json:"firstSeen"`
	LastUpdated time.Time `json:"lastUpdated"`
}
