package types

import "fmt"

// Collection names. The names double as top-level keys of a backup file.
const (
	CollectionTasks        = "tasks"
	CollectionNotes        = "notes"
	CollectionJournal      = "journal"
	CollectionGoals        = "goals"
	CollectionTimelines    = "timelines"
	CollectionFolders      = "folders"
	CollectionAchievements = "achievements"
	CollectionMilestones   = "milestones"
	CollectionFeedback     = "feedback-outbox"
	CollectionUserProfile  = "userProfile"
	CollectionSettings     = "settings"
)

// Kind tells how a collection is keyed.
type Kind int

const (
	// KindDocument collections key each record by its own "id" field.
	KindDocument Kind = iota + 1
	// KindKeyValue collections key each value by a caller-supplied name.
	KindKeyValue
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindKeyValue:
		return "keyvalue"
	default:
		return "unknown"
	}
}

// DocumentCollections lists the keyed-document collections of the current
// schema in export order.
var DocumentCollections = []string{
	CollectionTasks,
	CollectionNotes,
	CollectionJournal,
	CollectionGoals,
	CollectionTimelines,
	CollectionFolders,
	CollectionMilestones,
	CollectionAchievements,
	CollectionFeedback,
}

// KeyValueCollections lists the key-value collections of the current schema.
var KeyValueCollections = []string{
	CollectionUserProfile,
	CollectionSettings,
}

var collectionKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(DocumentCollections)+len(KeyValueCollections))
	for _, name := range DocumentCollections {
		m[name] = KindDocument
	}
	for _, name := range KeyValueCollections {
		m[name] = KindKeyValue
	}
	return m
}()

// KindOf returns the kind of the named collection. The boolean is false for
// names that are not part of the current schema.
func KindOf(name string) (Kind, bool) {
	k, ok := collectionKinds[name]
	return k, ok
}

// IsKeyValue reports whether name is a key-value collection.
func IsKeyValue(name string) bool {
	return collectionKinds[name] == KindKeyValue
}

// AllCollections returns every collection name, document collections first.
func AllCollections() []string {
	all := make([]string, 0, len(DocumentCollections)+len(KeyValueCollections))
	all = append(all, DocumentCollections...)
	return append(all, KeyValueCollections...)
}

// Known settings keys used by the application.
const (
	SettingHasCompletedSetup       = "hasCompletedSetup"
	SettingHasSeenOnboarding       = "hasSeenOnboarding"
	SettingLastVersion             = "lastVersion"
	SettingExportReminderFrequency = "exportReminderFrequency"
	SettingLastExportDate          = "lastExportDate"
	SettingHasDoneRetroactiveCheck = "hasDoneRetroactiveCheck"
)

// CheckCollection returns ErrCollectionNotFound for names outside the
// current schema.
func CheckCollection(name string) error {
	if _, ok := KindOf(name); !ok {
		return fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	return nil
}
