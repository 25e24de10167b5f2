package backup

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Import rejection reasons. A rejected import never touches the store.
var (
	ErrEmptyFile         = errors.New("empty file")
	ErrReadFile          = errors.New("file read failed")
	ErrInvalidJSON       = errors.New("invalid JSON")
	ErrNotObject         = errors.New("not a JSON object")
	ErrMissingCollection = errors.New("missing required collection")
	ErrNotArray          = errors.New("collection is not an array")
	ErrInvalidItem       = errors.New("invalid item")
	ErrMissingID         = errors.New("item missing id")
	ErrMalformedKeyValue = errors.New("malformed key-value item")
)

// ValidationError reports why a backup file was rejected. Error returns the
// message shown to the user; errors.Is matches both the reason sentinel and
// the underlying cause.
type ValidationError struct {
	Collection string
	Err        error
	Cause      error
}

func (e *ValidationError) Error() string {
	switch e.Err {
	case ErrEmptyFile:
		return "File appears to be empty."
	case ErrReadFile:
		return "Failed to read the file."
	case ErrInvalidJSON:
		return "Invalid file format. The file is not valid JSON."
	case ErrNotObject:
		return "Invalid file format. The backup file should contain a single JSON object."
	case ErrMissingCollection:
		return fmt.Sprintf("Corrupted backup file. Missing required data store: '%s'. This does not appear to be a FocusFlow backup.", e.Collection)
	case ErrNotArray:
		return fmt.Sprintf("Corrupted backup file. Data for '%s' is not in the correct format.", e.Collection)
	case ErrInvalidItem:
		return fmt.Sprintf("Corrupted backup file. Invalid item found in '%s'.", e.Collection)
	case ErrMissingID:
		return fmt.Sprintf("Corrupted backup file. An item in '%s' is missing a required 'id'.", e.Collection)
	case ErrMalformedKeyValue:
		return fmt.Sprintf("Corrupted backup file. A key-value item in '%s' is malformed.", e.Collection)
	case types.ErrDuplicateShareID:
		return fmt.Sprintf("Corrupted backup file. A share link in '%s' is used by more than one note.", e.Collection)
	default:
		return fmt.Sprintf("Corrupted backup file: %v", e.Err)
	}
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func reject(collection string, reason error) error {
	return &ValidationError{Collection: collection, Err: reason}
}
