package services

import (
	"path/filepath"
	"reflect"
	"testing"

	"bidflow/internal/mailstore"
	"bidflow/internal/models"
)

// scriptedPrompter answers prompts from a fixed list, in order.
type scriptedPrompter struct {
	answers []string
	asked   int
	said    []string
}

func (p *scriptedPrompter) Ask(prompt string) (string, error) {
	if p.asked >= len(p.answers) {
		return "", nil
	}
	answer := p.answers[p.asked]
	p.asked++
	return answer, nil
}

func (p *scriptedPrompter) Say(format string, args ...any) {
	p.said = append(p.said, format)
}

func TestChooseFolder_ByIndex(t *testing.T) {
	located := []mailstore.Located{
		{Path: "Inbox/Bid Requests"},
		{Path: "Inbox/Old Bids"},
	}

	prompter := &scriptedPrompter{answers: []string{"2"}}
	if got := ChooseFolder(prompter, located); got.Path != "Inbox/Old Bids" {
		t.Errorf("Expected Inbox/Old Bids, got %q", got.Path)
	}
	if prompter.asked != 1 {
		t.Errorf("Expected one prompt, got %d", prompter.asked)
	}
}

func TestChooseFolder_InvalidInputFallsBackToFirst(t *testing.T) {
	located := []mailstore.Located{
		{Path: "Inbox/Bid Requests"},
		{Path: "Inbox/Old Bids"},
	}

	for _, answer := range []string{"", "zero", "0", "9"} {
		prompter := &scriptedPrompter{answers: []string{answer}}
		if got := ChooseFolder(prompter, located); got.Path != "Inbox/Bid Requests" {
			t.Errorf("Answer %q: expected fallback to first folder, got %q", answer, got.Path)
		}
	}
}

func TestChooseFolder_SingleMatchSkipsPrompt(t *testing.T) {
	located := []mailstore.Located{{Path: "Inbox/Bid Requests"}}
	prompter := &scriptedPrompter{}
	if got := ChooseFolder(prompter, located); got.Path != "Inbox/Bid Requests" {
		t.Errorf("Expected the only folder, got %q", got.Path)
	}
	if prompter.asked != 0 {
		t.Errorf("Expected no prompt for a single match, got %d", prompter.asked)
	}
}

func TestPotentialDuplicates(t *testing.T) {
	projects := []models.ConsolidatedProject{
		{ProjectName: "Lakeview School"},
		{ProjectName: "New Lakeview School Renovation"},
		{ProjectName: "City Hall Roof"},
	}

	matches := PotentialDuplicates(projects, "Lakeview School")
	expected := []string{"Lakeview School", "New Lakeview School Renovation"}
	if !reflect.DeepEqual(matches, expected) {
		t.Errorf("Expected %v, got %v", expected, matches)
	}

	if matches := PotentialDuplicates(projects, ""); matches != nil {
		t.Errorf("Expected no matches for empty name, got %v", matches)
	}
}

func TestReview_RenameMergesRows(t *testing.T) {
	store := NewCorrectionStore(filepath.Join(t.TempDir(), "corrections.json"))
	prompter := &scriptedPrompter{answers: []string{"New Lakeview School Renovation"}}
	reviewer := NewReviewer(prompter, store, map[string]models.Correction{})

	projects := []models.ConsolidatedProject{
		{
			ProjectName: "Lakeview School",
			Contractors: []string{"Smith Co"},
			BidDueDate:  "06/05/25",
		},
		{
			ProjectName: "New Lakeview School Renovation",
			Contractors: []string{"Jones Inc"},
		},
	}

	reviewed, err := reviewer.Review(projects)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if len(reviewed) != 1 {
		t.Fatalf("Expected renamed rows to merge into 1, got %d", len(reviewed))
	}
	merged := reviewed[0]
	if merged.ProjectName != "New Lakeview School Renovation" {
		t.Errorf("Expected canonical name kept, got %q", merged.ProjectName)
	}
	if !reflect.DeepEqual(merged.Contractors, []string{"Jones Inc", "Smith Co"}) {
		t.Errorf("Expected merged contractor union, got %v", merged.Contractors)
	}
	if merged.BidDueDate != "06/05/25" {
		t.Errorf("Expected due date carried through the merge, got %q", merged.BidDueDate)
	}
	if merged.ContractorCount != 2 {
		t.Errorf("Expected contractor count 2, got %d", merged.ContractorCount)
	}
}

func TestReview_AcceptedRenamePersistsCorrection(t *testing.T) {
	store := NewCorrectionStore(filepath.Join(t.TempDir(), "corrections.json"))
	prompter := &scriptedPrompter{answers: []string{"New Lakeview School Renovation"}}
	reviewer := NewReviewer(prompter, store, map[string]models.Correction{})

	projects := []models.ConsolidatedProject{
		{ProjectName: "Lakeview School", Contractors: []string{"Smith Co"}, BidDueDate: "06/05/25"},
		{ProjectName: "New Lakeview School Renovation", Contractors: []string{"Jones Inc"}},
	}
	if _, err := reviewer.Review(projects); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	saved := store.Load()
	correction, ok := saved["New Lakeview School Renovation"]
	if !ok {
		t.Fatal("Expected a correction keyed by the canonical name")
	}
	if correction.Contractor != "Smith Co" {
		t.Errorf("Expected correction to carry the renamed row's contractors, got %q", correction.Contractor)
	}
	if correction.BidDueDate != "06/05/25" {
		t.Errorf("Expected correction to carry the due date, got %q", correction.BidDueDate)
	}
}

func TestReview_BlankAnswerKeepsOriginal(t *testing.T) {
	store := NewCorrectionStore(filepath.Join(t.TempDir(), "corrections.json"))
	prompter := &scriptedPrompter{answers: []string{""}}
	reviewer := NewReviewer(prompter, store, map[string]models.Correction{})

	projects := []models.ConsolidatedProject{
		{ProjectName: "Lakeview School", Contractors: []string{"Smith Co"}},
		{ProjectName: "New Lakeview School Renovation", Contractors: []string{"Jones Inc"}},
	}

	reviewed, err := reviewer.Review(projects)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if len(reviewed) != 2 {
		t.Fatalf("Expected both rows kept, got %d", len(reviewed))
	}
	saved := store.Load()
	if len(saved) != 0 {
		t.Errorf("Expected no corrections written, got %d", len(saved))
	}
}

func TestReview_NoDuplicatesAsksNothing(t *testing.T) {
	store := NewCorrectionStore(filepath.Join(t.TempDir(), "corrections.json"))
	prompter := &scriptedPrompter{}
	reviewer := NewReviewer(prompter, store, map[string]models.Correction{})

	projects := []models.ConsolidatedProject{
		{ProjectName: "Lakeview School"},
		{ProjectName: "City Hall Roof"},
	}

	reviewed, err := reviewer.Review(projects)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if prompter.asked != 0 {
		t.Errorf("Expected no prompts for distinct names, got %d", prompter.asked)
	}
	if len(reviewed) != 2 {
		t.Errorf("Expected rows untouched, got %d", len(reviewed))
	}
}
