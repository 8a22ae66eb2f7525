package mailstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Selection describes which slice of a folder to process. Exactly one mode
// applies: Days > 0 selects a day window, otherwise Count (with optional
// Offset) selects the most recent messages.
type Selection struct {
	Count  int
	Offset int
	Days   int
}

// ParseCountSpec parses the interactive count input: "15" or "15,200"
// (count, then how many most-recent messages to skip first).
func ParseCountSpec(input string) (Selection, error) {
	input = strings.TrimSpace(input)
	if i := strings.Index(input, ","); i >= 0 {
		count, err := strconv.Atoi(strings.TrimSpace(input[:i]))
		if err != nil {
			return Selection{}, fmt.Errorf("invalid count %q: %w", input[:i], err)
		}
		offset, err := strconv.Atoi(strings.TrimSpace(input[i+1:]))
		if err != nil {
			return Selection{}, fmt.Errorf("invalid offset %q: %w", input[i+1:], err)
		}
		if count < 0 || offset < 0 {
			return Selection{}, fmt.Errorf("count and offset must be non-negative: %q", input)
		}
		return Selection{Count: count, Offset: offset}, nil
	}
	count, err := strconv.Atoi(input)
	if err != nil {
		return Selection{}, fmt.Errorf("invalid count %q: %w", input, err)
	}
	if count < 0 {
		return Selection{}, fmt.Errorf("count must be non-negative: %q", input)
	}
	return Selection{Count: count}, nil
}

// SelectMessages returns the subset of folder's messages described by sel.
// Count modes order by receipt time descending before slicing and preserve
// that order in the result. The day-window mode compares receipt times
// naively against now minus the window, in store-local time, and keeps the
// folder's own order. An empty folder yields an empty result.
func SelectMessages(folder Folder, sel Selection, now time.Time) ([]Message, error) {
	messages, err := folder.Messages()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages in %s: %w", folder.Name(), err)
	}
	if len(messages) == 0 {
		return nil, nil
	}

	if sel.Days > 0 {
		cutoff := now.AddDate(0, 0, -sel.Days)
		var recent []Message
		for _, m := range messages {
			if !m.ReceivedTime().Before(cutoff) {
				recent = append(recent, m)
			}
		}
		return recent, nil
	}

	sorted := make([]Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReceivedTime().After(sorted[j].ReceivedTime())
	})

	start := sel.Offset
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + sel.Count
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], nil
}
