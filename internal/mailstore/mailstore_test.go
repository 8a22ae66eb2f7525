package mailstore

import (
	"fmt"
	"testing"
	"time"
)

type stubMessage struct {
	subject  string
	body     string
	received time.Time
	entryID  string
	category string
	saved    bool
}

func (m *stubMessage) Subject() string             { return m.subject }
func (m *stubMessage) Body() string                { return m.body }
func (m *stubMessage) ReceivedTime() time.Time     { return m.received }
func (m *stubMessage) StoreID() string             { return "stub" }
func (m *stubMessage) EntryID() string             { return m.entryID }
func (m *stubMessage) SetCategory(category string) { m.category = category }
func (m *stubMessage) Save() error                 { m.saved = true; return nil }

type stubFolder struct {
	name     string
	folders  []Folder
	messages []Message
}

func (f *stubFolder) Name() string                 { return f.name }
func (f *stubFolder) Folders() []Folder            { return f.folders }
func (f *stubFolder) Messages() ([]Message, error) { return f.messages, nil }

type stubStore struct {
	folders []Folder
}

func (s *stubStore) Folders() []Folder { return s.folders }
func (s *stubStore) OpenMessage(storeID, entryID string) (Message, error) {
	return nil, fmt.Errorf("not implemented")
}

func TestFindFolders_MatchesByNameNotPath(t *testing.T) {
	store := &stubStore{folders: []Folder{
		&stubFolder{name: "Inbox", folders: []Folder{
			&stubFolder{name: "Bid Requests"},
			&stubFolder{name: "Receipts"},
			&stubFolder{name: "Old Bids", folders: []Folder{
				// Parent matched, child did not: the keyword applies to the
				// folder's own name, not its full path.
				&stubFolder{name: "Archive"},
			}},
		}},
		&stubFolder{name: "Sent"},
	}}

	found := FindFolders(store, "Bid")
	if len(found) != 2 {
		t.Fatalf("Expected 2 folders, got %d", len(found))
	}
	if found[0].Path != "Inbox/Bid Requests" {
		t.Errorf("Expected Inbox/Bid Requests, got %q", found[0].Path)
	}
	if found[1].Path != "Inbox/Old Bids" {
		t.Errorf("Expected Inbox/Old Bids, got %q", found[1].Path)
	}
}

func TestFindFolders_CaseSensitive(t *testing.T) {
	store := &stubStore{folders: []Folder{
		&stubFolder{name: "bids and pieces"},
		&stubFolder{name: "Forbidden"},
	}}

	found := FindFolders(store, "Bid")
	// "Forbidden" does not contain "Bid"; neither does the lowercase folder.
	if len(found) != 0 {
		t.Fatalf("Expected no matches, got %d", len(found))
	}
}

func makeMessages(n int, base time.Time) []Message {
	// Message i is received i hours after base, so higher index = more recent.
	messages := make([]Message, n)
	for i := 0; i < n; i++ {
		messages[i] = &stubMessage{
			subject:  fmt.Sprintf("msg %d", i),
			entryID:  fmt.Sprintf("id-%d", i),
			received: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return messages
}

func TestSelectMessages_CountMostRecent(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	folder := &stubFolder{name: "Bid Requests", messages: makeMessages(10, base)}

	got, err := SelectMessages(folder, Selection{Count: 3}, base.Add(240*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"msg 9", "msg 8", "msg 7"} {
		if got[i].Subject() != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, got[i].Subject())
		}
	}
}

func TestSelectMessages_CountWithOffset(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	folder := &stubFolder{name: "Bid Requests", messages: makeMessages(500, base)}

	got, err := SelectMessages(folder, Selection{Count: 15, Offset: 200}, base.Add(10000*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 15 {
		t.Fatalf("Expected 15 messages, got %d", len(got))
	}
	// Messages ranked 201-215 by descending recency: indices 299 down to 285.
	if got[0].Subject() != "msg 299" {
		t.Errorf("Expected msg 299 first, got %q", got[0].Subject())
	}
	if got[14].Subject() != "msg 285" {
		t.Errorf("Expected msg 285 last, got %q", got[14].Subject())
	}
}

func TestSelectMessages_OffsetPastEnd(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	folder := &stubFolder{name: "Bid Requests", messages: makeMessages(5, base)}

	got, err := SelectMessages(folder, Selection{Count: 10, Offset: 100}, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %d messages", len(got))
	}
}

func TestSelectMessages_DayWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	folder := &stubFolder{name: "Bid Requests", messages: []Message{
		&stubMessage{subject: "old", received: now.AddDate(0, 0, -10)},
		&stubMessage{subject: "recent", received: now.AddDate(0, 0, -2)},
		&stubMessage{subject: "today", received: now},
	}}

	got, err := SelectMessages(folder, Selection{Days: 7}, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got))
	}
	if got[0].Subject() != "recent" || got[1].Subject() != "today" {
		t.Errorf("Unexpected selection: %q, %q", got[0].Subject(), got[1].Subject())
	}
}

func TestSelectMessages_EmptyFolder(t *testing.T) {
	folder := &stubFolder{name: "Bid Requests"}
	got, err := SelectMessages(folder, Selection{Count: 10}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result, got %d messages", len(got))
	}
}

func TestParseCountSpec(t *testing.T) {
	sel, err := ParseCountSpec("15")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Count != 15 || sel.Offset != 0 {
		t.Errorf("Expected count 15 offset 0, got %+v", sel)
	}

	sel, err = ParseCountSpec("15,200")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Count != 15 || sel.Offset != 200 {
		t.Errorf("Expected count 15 offset 200, got %+v", sel)
	}

	if _, err := ParseCountSpec("fifteen"); err == nil {
		t.Error("Expected error for non-numeric input")
	}
	if _, err := ParseCountSpec("-3"); err == nil {
		t.Error("Expected error for negative count")
	}
}
