// Package backup exports the whole store to one JSON document and merges
// such a document back in. Import validates and stages every record before
// the first write, then applies them in a single Store transaction.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// FilePrefix starts every backup file name.
const FilePrefix = "focusflow-backup-"

// DefaultReminderDays applies when exportReminderFrequency is unset.
const DefaultReminderDays = 30

// RequiredCollections must be present in every backup file.
var RequiredCollections = []string{
	types.CollectionTasks,
	types.CollectionNotes,
	types.CollectionJournal,
	types.CollectionGoals,
	types.CollectionTimelines,
	types.CollectionFolders,
	types.CollectionUserProfile,
	types.CollectionSettings,
	types.CollectionMilestones,
}

// Backup is one exported dataset keyed by collection name. Document
// collections hold raw records; key-value collections hold {key, value}
// objects.
type Backup map[string][]json.RawMessage

// FileName returns the backup file name for the UTC calendar day of now.
func FileName(now time.Time) string {
	return FilePrefix + now.UTC().Format(time.DateOnly) + ".json"
}

// Encode writes b as indented JSON.
func Encode(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// marshalEntry encodes a key-value pair without HTML escaping so values
// round-trip byte for byte.
func marshalEntry(e types.Entry) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Counts returns the number of records per collection.
func (b Backup) Counts() map[string]int {
	counts := make(map[string]int, len(b))
	for name, items := range b {
		counts[name] = len(items)
	}
	return counts
}
