package mailstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONStore is a message store backed by a single JSON file: a folder tree
// with inline messages. It stands in for the desktop mail client during
// development and testing, and doubles as the import format for mailbox
// snapshots. Category changes are written back through Save, replacing the
// whole file (single-writer discipline, same as the correction file).
type JSONStore struct {
	path    string
	folders []*jsonFolder
	index   map[string]*jsonMessage
}

type storeDocument struct {
	Folders []folderDocument `json:"folders"`
}

type folderDocument struct {
	Name     string            `json:"name"`
	Folders  []folderDocument  `json:"folders,omitempty"`
	Messages []messageDocument `json:"messages,omitempty"`
}

type messageDocument struct {
	EntryID      string    `json:"entryId"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	ReceivedTime time.Time `json:"receivedTime"`
	Categories   string    `json:"categories,omitempty"`
}

// OpenJSONStore loads a store snapshot from path.
func OpenJSONStore(path string) (*JSONStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mail store %s: %w", path, err)
	}
	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mail store %s: %w", path, err)
	}

	store := &JSONStore{path: path, index: make(map[string]*jsonMessage)}
	for i := range doc.Folders {
		store.folders = append(store.folders, store.buildFolder(&doc.Folders[i]))
	}
	return store, nil
}

func (s *JSONStore) buildFolder(doc *folderDocument) *jsonFolder {
	f := &jsonFolder{name: doc.Name, store: s}
	for i := range doc.Folders {
		f.folders = append(f.folders, s.buildFolder(&doc.Folders[i]))
	}
	for i := range doc.Messages {
		m := &jsonMessage{doc: doc.Messages[i], store: s}
		f.messages = append(f.messages, m)
		s.index[m.doc.EntryID] = m
	}
	return f
}

func (s *JSONStore) Folders() []Folder {
	folders := make([]Folder, len(s.folders))
	for i, f := range s.folders {
		folders[i] = f
	}
	return folders
}

func (s *JSONStore) OpenMessage(storeID, entryID string) (Message, error) {
	if storeID != s.path {
		return nil, fmt.Errorf("unknown store id %q", storeID)
	}
	m, ok := s.index[entryID]
	if !ok {
		return nil, fmt.Errorf("no message with entry id %q", entryID)
	}
	return m, nil
}

// flush serializes the whole tree back to the backing file.
func (s *JSONStore) flush() error {
	doc := storeDocument{}
	for _, f := range s.folders {
		doc.Folders = append(doc.Folders, f.document())
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize mail store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mail store %s: %w", s.path, err)
	}
	return nil
}

type jsonFolder struct {
	name     string
	folders  []*jsonFolder
	messages []*jsonMessage
	store    *JSONStore
}

func (f *jsonFolder) Name() string { return f.name }

func (f *jsonFolder) Folders() []Folder {
	folders := make([]Folder, len(f.folders))
	for i, sub := range f.folders {
		folders[i] = sub
	}
	return folders
}

func (f *jsonFolder) Messages() ([]Message, error) {
	messages := make([]Message, len(f.messages))
	for i, m := range f.messages {
		messages[i] = m
	}
	return messages, nil
}

func (f *jsonFolder) document() folderDocument {
	doc := folderDocument{Name: f.name}
	for _, sub := range f.folders {
		doc.Folders = append(doc.Folders, sub.document())
	}
	for _, m := range f.messages {
		doc.Messages = append(doc.Messages, m.doc)
	}
	return doc
}

type jsonMessage struct {
	doc   messageDocument
	store *JSONStore
}

func (m *jsonMessage) Subject() string            { return m.doc.Subject }
func (m *jsonMessage) Body() string               { return m.doc.Body }
func (m *jsonMessage) ReceivedTime() time.Time    { return m.doc.ReceivedTime }
func (m *jsonMessage) StoreID() string            { return m.store.path }
func (m *jsonMessage) EntryID() string            { return m.doc.EntryID }
func (m *jsonMessage) SetCategory(category string) { m.doc.Categories = category }

func (m *jsonMessage) Save() error {
	return m.store.flush()
}
