package mailstore

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleStore = `{
  "folders": [
    {
      "name": "Inbox",
      "folders": [
        {
          "name": "Bid Requests",
          "messages": [
            {
              "entryId": "m1",
              "subject": "Bid Invite: Lakeview School",
              "body": "Bids due June 5, 2025.",
              "receivedTime": "2025-05-20T09:30:00Z"
            },
            {
              "entryId": "m2",
              "subject": "RE: Downtown Plaza",
              "body": "Job walk next Tuesday.",
              "receivedTime": "2025-05-21T14:00:00Z"
            }
          ]
        }
      ]
    }
  ]
}`

func writeSampleStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mail.json")
	if err := os.WriteFile(path, []byte(sampleStore), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenJSONStore(t *testing.T) {
	store, err := OpenJSONStore(writeSampleStore(t))
	if err != nil {
		t.Fatal(err)
	}

	found := FindFolders(store, "Bid")
	if len(found) != 1 {
		t.Fatalf("Expected 1 bid folder, got %d", len(found))
	}
	if found[0].Path != "Inbox/Bid Requests" {
		t.Errorf("Expected Inbox/Bid Requests, got %q", found[0].Path)
	}

	messages, err := found[0].Folder.Messages()
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Subject() != "Bid Invite: Lakeview School" {
		t.Errorf("Unexpected subject %q", messages[0].Subject())
	}
}

func TestJSONStore_OpenMessageByID(t *testing.T) {
	path := writeSampleStore(t)
	store, err := OpenJSONStore(path)
	if err != nil {
		t.Fatal(err)
	}

	m, err := store.OpenMessage(path, "m2")
	if err != nil {
		t.Fatal(err)
	}
	if m.Subject() != "RE: Downtown Plaza" {
		t.Errorf("Unexpected subject %q", m.Subject())
	}

	if _, err := store.OpenMessage(path, "nope"); err == nil {
		t.Error("Expected error for unknown entry id")
	}
	if _, err := store.OpenMessage("other-store", "m2"); err == nil {
		t.Error("Expected error for unknown store id")
	}
}

func TestJSONStore_CategoryPersists(t *testing.T) {
	path := writeSampleStore(t)
	store, err := OpenJSONStore(path)
	if err != nil {
		t.Fatal(err)
	}

	m, err := store.OpenMessage(path, "m1")
	if err != nil {
		t.Fatal(err)
	}
	m.SetCategory("Orange Category")
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}

	// Reload from disk and confirm the category survived.
	reloaded, err := OpenJSONStore(path)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := reloaded.OpenMessage(path, "m1")
	if err != nil {
		t.Fatal(err)
	}
	jm, ok := m2.(*jsonMessage)
	if !ok {
		t.Fatal("Expected jsonMessage")
	}
	if jm.doc.Categories != "Orange Category" {
		t.Errorf("Expected Orange Category, got %q", jm.doc.Categories)
	}
}
