package services

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"bidflow/internal/mailstore"
	"bidflow/internal/models"
)

// Prompter is the interaction boundary for review loops, so the merge logic
// tests without a console.
type Prompter interface {
	// Ask shows a prompt and returns the user's response line, which may be
	// empty.
	Ask(prompt string) (string, error)
	Say(format string, args ...any)
}

// ConsolePrompter is the stdin/stdout Prompter used by the CLI entry points.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

func (p *ConsolePrompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ConsolePrompter) Say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// ChooseFolder has the user pick one matched folder by number. A blank,
// non-numeric, or out-of-range answer falls back to the first folder, so a
// stray keystroke never aborts a run. A single match or a nil prompter skips
// the prompt.
func ChooseFolder(prompter Prompter, located []mailstore.Located) mailstore.Located {
	if len(located) == 1 || prompter == nil {
		return located[0]
	}

	prompter.Say("Multiple folders matched:")
	for i, loc := range located {
		prompter.Say("%d. %s", i+1, loc.Path)
	}
	answer, err := prompter.Ask(fmt.Sprintf("Select a folder [1-%d, default 1]: ", len(located)))
	if err != nil {
		return located[0]
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(located) {
		if strings.TrimSpace(answer) != "" {
			prompter.Say("Invalid selection, using %s", located[0].Path)
		}
		return located[0]
	}
	return located[n-1]
}

// PotentialDuplicates returns the names of every project whose name contains
// name as a case-insensitive substring, the row itself included.
func PotentialDuplicates(projects []models.ConsolidatedProject, name string) []string {
	if name == "" {
		return nil
	}
	needle := strings.ToLower(name)
	var matches []string
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.ProjectName), needle) {
			matches = append(matches, p.ProjectName)
		}
	}
	return matches
}

// Reviewer runs the duplicate-review pass over consolidated projects.
type Reviewer struct {
	prompter    Prompter
	store       *CorrectionStore
	corrections map[string]models.Correction
}

func NewReviewer(prompter Prompter, store *CorrectionStore, corrections map[string]models.Correction) *Reviewer {
	return &Reviewer{prompter: prompter, store: store, corrections: corrections}
}

// Review walks each project once, shows potential duplicates, and lets the
// user supply a canonical name. An accepted rename records a correction keyed
// by the new name and persists it immediately, bounding data loss if the run
// is killed. After the single prompting pass, renamed rows are regrouped so
// duplicates merged in this run collapse into one output row.
func (r *Reviewer) Review(projects []models.ConsolidatedProject) ([]models.ConsolidatedProject, error) {
	reviewed := make([]models.ConsolidatedProject, len(projects))
	copy(reviewed, projects)

	for i := range reviewed {
		duplicates := PotentialDuplicates(reviewed, reviewed[i].ProjectName)
		if len(duplicates) <= 1 {
			continue
		}

		r.prompter.Say("Potential duplicates found for project: %s", reviewed[i].ProjectName)
		for _, name := range duplicates {
			r.prompter.Say("- %s", name)
		}
		keep, err := r.prompter.Ask("Which project name would you like to keep? (Leave blank to keep the original): ")
		if err != nil {
			return nil, fmt.Errorf("review aborted: %w", err)
		}
		if keep == "" {
			continue
		}

		reviewed[i].ProjectName = keep
		r.corrections[keep] = models.Correction{
			Contractor: ContractorList(reviewed[i]),
			BidDueDate: reviewed[i].BidDueDate,
		}
		if err := r.store.Save(r.corrections); err != nil {
			// The rename still applies to this run's output.
			r.prompter.Say("⚠️  Failed to save correction: %v", err)
		}
	}

	return regroup(reviewed), nil
}

// regroup merges rows that ended up sharing a name after renames.
func regroup(projects []models.ConsolidatedProject) []models.ConsolidatedProject {
	groups := map[string]*models.ConsolidatedProject{}
	seen := map[string]map[string]bool{}
	var order []string

	for _, p := range projects {
		group, ok := groups[p.ProjectName]
		if !ok {
			copied := p
			copied.Contractors = nil
			groups[p.ProjectName] = &copied
			seen[p.ProjectName] = map[string]bool{}
			order = append(order, p.ProjectName)
			group = &copied
		} else {
			if group.BidDueDate == "" {
				group.BidDueDate = p.BidDueDate
			}
			if group.JobWalk == "" {
				group.JobWalk = p.JobWalk
			}
			if group.Description == "" {
				group.Description = p.Description
			}
		}
		for _, contractor := range p.Contractors {
			key := strings.ToLower(strings.TrimSpace(contractor))
			if !seen[p.ProjectName][key] {
				seen[p.ProjectName][key] = true
				group.Contractors = append(group.Contractors, contractor)
			}
		}
	}

	merged := make([]models.ConsolidatedProject, 0, len(order))
	for _, name := range order {
		group := groups[name]
		sort.Strings(group.Contractors)
		group.ContractorCount = len(group.Contractors)
		merged = append(merged, *group)
	}
	return merged
}
