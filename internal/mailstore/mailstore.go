package mailstore

import (
	"strings"
	"time"
)

// Message is the narrow capability surface the pipeline needs from a mail
// item. Adapters implement it against the real message store; everything in
// internal/services depends only on this interface.
type Message interface {
	Subject() string
	Body() string
	ReceivedTime() time.Time
	// StoreID and EntryID form the stable identifier pair used to reopen
	// the message later.
	StoreID() string
	EntryID() string
	// SetCategory stages a category label on the message; Save persists it
	// through the store's own save operation.
	SetCategory(category string)
	Save() error
}

// Folder is one node of the store's folder tree.
type Folder interface {
	Name() string
	Folders() []Folder
	Messages() ([]Message, error)
}

// Store exposes the folder tree of a connected message store.
type Store interface {
	Folders() []Folder
	// OpenMessage reopens a message by its stable identifier pair.
	OpenMessage(storeID, entryID string) (Message, error)
}

// Located pairs a matched folder with its human-readable path.
type Located struct {
	Path   string
	Folder Folder
}

// FindFolders walks the store's folder tree depth-first and returns every
// folder whose name contains keyword as a case-sensitive substring, in
// traversal order. Paths are joined with "/".
func FindFolders(store Store, keyword string) []Located {
	var found []Located
	for _, top := range store.Folders() {
		found = append(found, findFolders(top, "", keyword)...)
	}
	return found
}

func findFolders(folder Folder, parentPath, keyword string) []Located {
	path := folder.Name()
	if parentPath != "" {
		path = parentPath + "/" + folder.Name()
	}

	var found []Located
	if containsKeyword(folder.Name(), keyword) {
		found = append(found, Located{Path: path, Folder: folder})
	}
	for _, sub := range folder.Folders() {
		found = append(found, findFolders(sub, path, keyword)...)
	}
	return found
}

func containsKeyword(name, keyword string) bool {
	// Case-sensitive on purpose: "bidding@..." address folders are noise,
	// the folders of interest are named like "Bid Requests".
	return strings.Contains(name, keyword)
}
