package share

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Messages shown to readers of a shared link.
const (
	msgNoteNotFound = "Note not found or sharing has been disabled."
	msgNoteFailed   = "Could not retrieve note."
)

type healthInfo struct {
	version string
	started time.Time
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func healthz(info healthInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       info.version,
			UptimeSeconds: time.Since(info.started).Seconds(),
		})
	}
}

// sharedNote returns the raw note whose shareId matches the path.
func sharedNote(store types.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shareID := chi.URLParam(r, "shareId")
		raw, found, err := findShared(r.Context(), store, shareID)
		if err != nil {
			log.Error("reading shared note", logger.String("share_id", shareID), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgNoteFailed})
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNoteNotFound})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

// findShared scans the notes collection for shareID. An empty shareID never
// matches.
func findShared(ctx context.Context, store types.Store, shareID string) (json.RawMessage, bool, error) {
	if shareID == "" {
		return nil, false, nil
	}
	values, err := store.GetAll(ctx, types.CollectionNotes)
	if err != nil {
		return nil, false, err
	}
	for _, raw := range values {
		note, err := types.Decode[types.Note](raw)
		if err != nil {
			continue
		}
		if note.ShareID == shareID {
			return raw, true, nil
		}
	}
	return nil, false, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
