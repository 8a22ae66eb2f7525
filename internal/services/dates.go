package services

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"bidflow/internal/models"
)

// Regex fallbacks for date mentions embedded in longer sentences, tried in
// order after a direct parse of the whole string fails.
var dateMentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\.? \d{1,2}(?:st|nd|rd|th)?,? \d{4}\b`),
	regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.? \d{1,2}(?:st|nd|rd|th)?,? \d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
}

var ordinalSuffixPattern = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)`)

// NormalizeDueDate parses a loosely formatted date string into MM/DD/YY.
// Wording around the date is tolerated. On any failure it returns the fixed
// sentinel so failed rows stay visually distinguishable downstream; no error
// ever escapes.
func NormalizeDueDate(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return models.SentinelDate
	}

	if t, ok := parseDate(cleaned); ok {
		return t.Format("01/02/06")
	}

	// The string wasn't a date on its own; look for a date mention inside it.
	for _, pattern := range dateMentionPatterns {
		if match := pattern.FindString(cleaned); match != "" {
			if t, ok := parseDate(match); ok {
				return t.Format("01/02/06")
			}
		}
	}

	log.Printf("⚠️  Failed to parse date %q, substituting sentinel", raw)
	return models.SentinelDate
}

// ValidDate reports whether s parses as a calendar date with no fuzziness.
// The local extraction strategy uses it to reject non-date entity spans.
func ValidDate(s string) bool {
	_, ok := parseDate(strings.TrimSpace(s))
	return ok
}

func parseDate(s string) (t time.Time, ok bool) {
	// dateparse panics on some malformed inputs; treat a panic as a plain
	// parse failure so the sentinel path always applies.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	s = ordinalSuffixPattern.ReplaceAllString(s, "$1")
	parsed, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// FormatTrainingDate converts a user-confirmed date to MM/DD/YYYY for span
// annotation; unparseable input is returned unchanged so the trainer can
// still locate it in the text.
func FormatTrainingDate(s string) string {
	if s == "" {
		return s
	}
	if t, ok := parseDate(strings.TrimSpace(s)); ok {
		return t.Format("01/02/2006")
	}
	return s
}
