package services

import (
	"sort"
	"strings"

	"bidflow/internal/models"
)

// Consolidate groups records by exact project name and merges each group into
// one summary row. Descriptive fields take the first non-empty value in
// original message order. Contractors are unioned: trimmed, deduplicated
// case-insensitively (first-seen casing kept), sorted lexicographically.
// Records with no project name are kept under the placeholder group rather
// than dropped, so the report still shows that something arrived.
func Consolidate(records []models.BidRecord) []models.ConsolidatedProject {
	groups := map[string]*models.ConsolidatedProject{}
	seen := map[string]map[string]bool{} // group -> normalized contractor set
	var order []string

	for _, record := range records {
		name := record.ProjectName
		if name == "" {
			name = models.UnknownProject
		}

		group, ok := groups[name]
		if !ok {
			group = &models.ConsolidatedProject{ProjectName: name}
			groups[name] = group
			seen[name] = map[string]bool{}
			order = append(order, name)
		}

		if group.BidDueDate == "" {
			group.BidDueDate = record.BidDueDate
		}
		if group.JobWalk == "" {
			group.JobWalk = record.JobWalk
		}
		if group.Description == "" {
			group.Description = record.Description
		}

		contractor := strings.TrimSpace(record.Contractor)
		if contractor == "" {
			continue
		}
		key := strings.ToLower(contractor)
		if !seen[name][key] {
			seen[name][key] = true
			group.Contractors = append(group.Contractors, contractor)
		}
	}

	projects := make([]models.ConsolidatedProject, 0, len(order))
	for _, name := range order {
		group := groups[name]
		sort.Strings(group.Contractors)
		group.ContractorCount = len(group.Contractors)
		projects = append(projects, *group)
	}
	return projects
}

// ContractorList renders a project's contractor union the way the report
// shows it.
func ContractorList(p models.ConsolidatedProject) string {
	return strings.Join(p.Contractors, ", ")
}
