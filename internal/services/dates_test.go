package services

import (
	"strings"
	"testing"

	"bidflow/internal/models"
)

func TestNormalizeDueDate_PlainFormats(t *testing.T) {
	cases := map[string]string{
		"June 5, 2025":    "06/05/25",
		"Jun 5, 2025":     "06/05/25",
		"6/5/2025":        "06/05/25",
		"06/05/2025":      "06/05/25",
		"2025-06-05":      "06/05/25",
		"March 3rd, 2026": "03/03/26",
	}
	for input, expected := range cases {
		if got := NormalizeDueDate(input); got != expected {
			t.Errorf("NormalizeDueDate(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestNormalizeDueDate_EmbeddedInSentence(t *testing.T) {
	// The date is buried in surrounding wording; the regex fallback finds it.
	input := "Bids are due no later than March 3rd, 2026 at 2pm"
	expected := "03/03/26"
	if got := NormalizeDueDate(input); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestNormalizeDueDate_UnparseableYieldsSentinel(t *testing.T) {
	for _, input := range []string{"", "ASAP", "end of next week"} {
		if got := NormalizeDueDate(input); got != models.SentinelDate {
			t.Errorf("NormalizeDueDate(%q): expected sentinel %q, got %q", input, models.SentinelDate, got)
		}
	}
}

func TestNormalizeDueDate_AdversarialInputNeverPanics(t *testing.T) {
	// The parser library can panic on malformed input; the normalizer must
	// degrade to the sentinel instead.
	inputs := []string{
		"4:00pm +",
		"due 13/45/2019 sharp",
		strings.Repeat("9", 64),
		"\x00\x01\x02",
		"June 170th, 99999999999999999999",
	}
	for _, input := range inputs {
		got := NormalizeDueDate(input)
		if got != models.SentinelDate {
			t.Errorf("NormalizeDueDate(%q): expected sentinel, got %q", input, got)
		}
		if ValidDate(input) {
			t.Errorf("ValidDate(%q): expected false", input)
		}
	}
}

func TestNormalizeDueDate_Idempotent(t *testing.T) {
	// Normalizing an already normalized date must not change it.
	once := NormalizeDueDate("June 5, 2025")
	twice := NormalizeDueDate(once)
	if once != twice {
		t.Errorf("Expected %q to be stable under renormalization, got %q", once, twice)
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("06/05/2025") {
		t.Error("Expected 06/05/2025 to be a valid date")
	}
	if ValidDate("the main lobby") {
		t.Error("Expected non-date text to be rejected")
	}
}

func TestFormatTrainingDate(t *testing.T) {
	if got := FormatTrainingDate("June 5, 2025"); got != "06/05/2025" {
		t.Errorf("Expected 06/05/2025, got %q", got)
	}
	// Unparseable input passes through so span lookup can still be attempted.
	if got := FormatTrainingDate("sometime soon"); got != "sometime soon" {
		t.Errorf("Expected pass-through, got %q", got)
	}
	if got := FormatTrainingDate(""); got != "" {
		t.Errorf("Expected empty pass-through, got %q", got)
	}
}
