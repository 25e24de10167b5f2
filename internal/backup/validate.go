package backup

import (
	"bytes"
	"encoding/json"

	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Document is a parsed backup file: collection name to raw array. Unknown
// top-level keys are kept but never read.
type Document map[string]json.RawMessage

// Parse decodes data and runs the shape checks: an object, every required
// collection present, every recognized collection an array, and the first
// element of each non-empty array well formed. The first-element check is
// shallow; Stage checks every record.
func Parse(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, reject("", ErrEmptyFile)
	}
	if !json.Valid(trimmed) {
		return nil, reject("", ErrInvalidJSON)
	}
	if trimmed[0] != '{' {
		return nil, reject("", ErrNotObject)
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &ValidationError{Err: ErrInvalidJSON, Cause: err}
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate runs the shape checks on an already decoded document.
func Validate(doc Document) error {
	for _, name := range RequiredCollections {
		if _, ok := doc[name]; !ok {
			return reject(name, ErrMissingCollection)
		}
	}

	for _, name := range types.AllCollections() {
		raw, ok := doc[name]
		if !ok {
			continue
		}
		items, err := decodeArray(raw)
		if err != nil {
			return reject(name, ErrNotArray)
		}
		if len(items) == 0 {
			continue
		}
		if err := checkItem(name, items[0]); err != nil {
			return err
		}
	}
	return nil
}

// Stage checks every record of every recognized collection against its
// schema and returns the upserts to apply. A nil error means the batch can
// be applied as is.
func Stage(doc Document) (*types.Batch, error) {
	batch := types.NewBatch()
	for _, name := range types.AllCollections() {
		raw, ok := doc[name]
		if !ok {
			continue
		}
		items, err := decodeArray(raw)
		if err != nil {
			return nil, reject(name, ErrNotArray)
		}
		for _, item := range items {
			if err := checkItem(name, item); err != nil {
				return nil, err
			}
			key, value := "", json.RawMessage(item)
			if types.IsKeyValue(name) {
				key, value, err = decodeEntry(item)
				if err != nil {
					return nil, &ValidationError{Collection: name, Err: ErrMalformedKeyValue, Cause: err}
				}
			}
			key, value, err = types.PrepareRecord(name, value, key)
			if err != nil {
				return nil, &ValidationError{Collection: name, Err: ErrInvalidItem, Cause: err}
			}
			batch.Put(name, key, value)
		}
	}
	return batch, nil
}

// decodeArray accepts only a JSON array; null is rejected.
func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// checkItem verifies one element is an object carrying a string id
// (document collections) or a key field (key-value collections).
func checkItem(collection string, item json.RawMessage) error {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return reject(collection, ErrInvalidItem)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return &ValidationError{Collection: collection, Err: ErrInvalidItem, Cause: err}
	}

	if types.IsKeyValue(collection) {
		if _, ok := fields["key"]; !ok {
			return reject(collection, ErrMalformedKeyValue)
		}
		return nil
	}

	id := bytes.TrimSpace(fields["id"])
	if len(id) == 0 || id[0] != '"' {
		return reject(collection, ErrMissingID)
	}
	return nil
}

// decodeEntry reads a {key, value} item. The key must be a non-empty
// string; a missing value is stored as null.
func decodeEntry(item json.RawMessage) (string, json.RawMessage, error) {
	var e struct {
		Key   *string         `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(item, &e); err != nil {
		return "", nil, err
	}
	if e.Key == nil || *e.Key == "" {
		return "", nil, types.ErrInvalidID
	}
	if len(e.Value) == 0 {
		return *e.Key, json.RawMessage("null"), nil
	}
	return *e.Key, e.Value, nil
}
