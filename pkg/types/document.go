package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Document is implemented by every keyed-document record type.
type Document interface {
	// DocumentID returns the primary key of the record.
	DocumentID() string
	// Validate checks invariants that hold for the record in isolation.
	Validate() error
}

// documentSchemas maps each document collection to a decoder for its record
// type. Decoding a raw record into the struct and calling Validate is the
// store-boundary schema check.
var documentSchemas = map[string]func(json.RawMessage) (Document, error){
	CollectionTasks:        decodeAs[Task],
	CollectionNotes:        decodeAs[Note],
	CollectionJournal:      decodeAs[JournalEntry],
	CollectionGoals:        decodeAs[Goal],
	CollectionTimelines:    decodeAs[Timeline],
	CollectionFolders:      decodeAs[Folder],
	CollectionAchievements: decodeAs[Achievement],
	CollectionMilestones:   decodeAs[Milestone],
	CollectionFeedback:     decodeAs[FeedbackItem],
}

func decodeAs[T Document](raw json.RawMessage) (Document, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeDocument decodes and validates a raw record of a document collection.
// Errors wrap ErrCollectionNotFound or ErrInvalidData.
func DecodeDocument(collection string, raw json.RawMessage) (Document, error) {
	decode, ok := documentSchemas[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a document collection", ErrCollectionNotFound, collection)
	}
	doc, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidData, collection, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidData, collection, err)
	}
	return doc, nil
}

// PrepareRecord validates a value destined for collection and resolves its
// storage key. For document collections the key comes from the record's id;
// a non-empty key argument must agree with it. For key-value collections the
// key argument is required and the value must be valid JSON. The returned
// value is compacted.
func PrepareRecord(collection string, value json.RawMessage, key string) (string, json.RawMessage, error) {
	kind, ok := KindOf(collection)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, collection)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrInvalidData, collection, err)
	}
	compact := json.RawMessage(buf.Bytes())

	if kind == KindKeyValue {
		if key == "" {
			return "", nil, fmt.Errorf("%w: %s requires a key", ErrInvalidID, collection)
		}
		return key, compact, nil
	}

	doc, err := DecodeDocument(collection, compact)
	if err != nil {
		return "", nil, err
	}
	id := doc.DocumentID()
	if key != "" && key != id {
		return "", nil, fmt.Errorf("%w: key %q does not match id %q", ErrInvalidID, key, id)
	}
	return id, compact, nil
}

// Decode unmarshals a raw record into T and validates it.
func Decode[T Document](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return v, nil
}

// Encode marshals a document for storage.
func Encode[T Document](doc T) (json.RawMessage, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return b, nil
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// format of every record.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// validDate reports whether s is a calendar date formatted YYYY-MM-DD.
func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
