// Package sqlite provides the public factory for the SQLite Store engine
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/internal/sqlite"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// NewBackend creates a closed SQLite store that discards logs.
// Call Open with a Config to connect.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "~/.local/share/focusflow",
//	})
//	defer store.Close()
func NewBackend() types.Store {
	return sqlite.NewBackend(logger.Nop())
}
