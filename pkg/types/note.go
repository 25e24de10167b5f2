package types

// Folder types partition folder usage between notes and journal entries.
const (
	FolderTypeNote    = "note"
	FolderTypeJournal = "journal"
)

// Folder groups notes or journal entries.
type Folder struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"createdAt"`
}

// DocumentID returns the folder id.
func (f Folder) DocumentID() string { return f.ID }

// Validate checks the folder id and type.
func (f Folder) Validate() error {
	if f.ID == "" {
		return ErrInvalidID
	}
	if f.Type != FolderTypeNote && f.Type != FolderTypeJournal {
		return ErrInvalidFolderType
	}
	return nil
}

// Note is a rich-text note. ShareID, when set, is the public read key.
type Note struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id,omitempty"`
	Title     string   `json:"title"`
	Content   string   `json:"content"` // HTML markup.
	Tags      []string `json:"tags"`
	FolderID  string   `json:"folderId,omitempty"`
	ShareID   string   `json:"shareId,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt,omitempty"`
}

// DocumentID returns the note id.
func (n Note) DocumentID() string { return n.ID }

// Validate checks the note id.
func (n Note) Validate() error {
	if n.ID == "" {
		return ErrInvalidID
	}
	return nil
}

// CheckShareID reports ErrDuplicateShareID when another note in existing
// already uses candidate's ShareID.
func CheckShareID(existing []Note, candidate Note) error {
	if candidate.ShareID == "" {
		return nil
	}
	for _, n := range existing {
		if n.ID != candidate.ID && n.ShareID == candidate.ShareID {
			return ErrDuplicateShareID
		}
	}
	return nil
}

// JournalEntry is a dated journal page.
type JournalEntry struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	FolderID  string `json:"folderId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// DocumentID returns the entry id.
func (j JournalEntry) DocumentID() string { return j.ID }

// Validate checks the entry id.
func (j JournalEntry) Validate() error {
	if j.ID == "" {
		return ErrInvalidID
	}
	return nil
}

// CheckFolderType reports ErrFolderTypeMismatch when folderID names a folder
// whose type is not want, and ErrNotFound when no such folder exists. An
// empty folderID is always accepted.
func CheckFolderType(folders []Folder, folderID, want string) error {
	if folderID == "" {
		return nil
	}
	for _, f := range folders {
		if f.ID != folderID {
			continue
		}
		if f.Type != want {
			return ErrFolderTypeMismatch
		}
		return nil
	}
	return ErrNotFound
}
