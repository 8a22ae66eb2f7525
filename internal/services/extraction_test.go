package services

import "testing"

func TestParseLabeledResponse_AllFields(t *testing.T) {
	content := `Project Name: Lakeview School Gym
Contractor: Smith Co
Bid Due Date: June 5, 2025
Job Walk: May 20, 2025 at 10am
Description: Gymnasium renovation including new flooring`

	record := ParseLabeledResponse(content)
	if record.ProjectName != "Lakeview School Gym" {
		t.Errorf("Expected %q, got %q", "Lakeview School Gym", record.ProjectName)
	}
	if record.Contractor != "Smith Co" {
		t.Errorf("Expected %q, got %q", "Smith Co", record.Contractor)
	}
	if record.BidDueDate != "June 5, 2025" {
		t.Errorf("Expected %q, got %q", "June 5, 2025", record.BidDueDate)
	}
	if record.JobWalk != "May 20, 2025 at 10am" {
		t.Errorf("Expected %q, got %q", "May 20, 2025 at 10am", record.JobWalk)
	}
	if record.Description != "Gymnasium renovation including new flooring" {
		t.Errorf("Unexpected description %q", record.Description)
	}
}

func TestParseLabeledResponse_BulletsAndEmphasis(t *testing.T) {
	// Models sometimes decorate the requested lines with bullets or asterisks.
	content := `- **Project Name:** Lakeview School Gym
- Contractor: **Smith Co**`

	record := ParseLabeledResponse(content)
	if record.ProjectName != "Lakeview School Gym" {
		t.Errorf("Expected decorated label line to parse, got %q", record.ProjectName)
	}
	if record.Contractor != "Smith Co" {
		t.Errorf("Expected emphasis to be stripped, got %q", record.Contractor)
	}
}

func TestParseLabeledResponse_NotSpecifiedBecomesEmpty(t *testing.T) {
	content := `Project Name: Not specified
Contractor: N/A
Bid Due Date: not mentioned
Job Walk: None
Description: Not provided`

	record := ParseLabeledResponse(content)
	if !record.Empty() {
		t.Errorf("Expected an all-empty record, got %+v", record)
	}
}

func TestParseLabeledResponse_LegacyDescriptionLabel(t *testing.T) {
	record := ParseLabeledResponse("Project Description: Sitework and paving")
	if record.Description != "Sitework and paving" {
		t.Errorf("Expected legacy label to populate description, got %q", record.Description)
	}
}

func TestParseLabeledResponse_UnknownLinesIgnored(t *testing.T) {
	content := `Here are the extracted fields:
Project Name: Lakeview School Gym
Let me know if you need anything else.`

	record := ParseLabeledResponse(content)
	if record.ProjectName != "Lakeview School Gym" {
		t.Errorf("Expected %q, got %q", "Lakeview School Gym", record.ProjectName)
	}
	if record.Description != "" {
		t.Errorf("Expected chatter lines to be ignored, got %q", record.Description)
	}
}

func TestCleanSubject_StackedPrefixes(t *testing.T) {
	cases := map[string]string{
		"RE: FW: Bid Invite: Lakeview School Gym": "Lakeview School Gym",
		"Fwd: re: City Hall Roof":                 "City Hall Roof",
		"Lakeview School Gym":                     "Lakeview School Gym",
		"":                                        "",
	}
	for input, expected := range cases {
		if got := CleanSubject(input); got != expected {
			t.Errorf("CleanSubject(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestCleanSubject_KeepsInteriorKeywords(t *testing.T) {
	// Only leading prefixes are stripped; interior occurrences stay.
	input := "New bid invite: see RE: attached"
	if got := CleanSubject(input); got != input {
		t.Errorf("Expected %q unchanged, got %q", input, got)
	}
}
