// Package collection provides a typed accessor over one Store collection.
// Each accessor keeps an in-memory mirror of the collection for readers and
// routes writes through per-collection guards.
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/focusflow/internal/invalidate"
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// JSON field names stamped by the accessor.
const (
	fieldID        = "id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// Guard checks a cross-record invariant before a write. prev is nil when
// next is a new record.
type Guard[T types.Document] func(ctx context.Context, store types.Store, prev *T, next T) error

// Accessor wraps one document collection of a Store. Writes are last write
// wins; there is no optimistic locking.
type Accessor[T types.Document] struct {
	store      types.Store
	collection string
	guards     []Guard[T]
	log        logger.Logger
	now        func() time.Time

	mu      sync.RWMutex
	items   []T
	loading bool
	started uint64 // sequence of the most recently started refresh
	applied uint64 // sequence of the refresh whose result is in items
}

// New returns an accessor for collection. The mirror is empty until the
// first Refresh or List.
func New[T types.Document](store types.Store, collection string, log logger.Logger, guards ...Guard[T]) *Accessor[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &Accessor[T]{
		store:      store,
		collection: collection,
		guards:     guards,
		log:        log.With(logger.String("collection", collection)),
		now:        time.Now,
	}
}

// Collection returns the wrapped collection name.
func (a *Accessor[T]) Collection() string {
	return a.collection
}

// Items returns a copy of the in-memory mirror.
func (a *Accessor[T]) Items() []T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]T, len(a.items))
	copy(out, a.items)
	return out
}

// Loading reports whether a refresh is in flight.
func (a *Accessor[T]) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// List refreshes the mirror and returns it.
func (a *Accessor[T]) List(ctx context.Context) ([]T, error) {
	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	return a.Items(), nil
}

// Refresh reloads the mirror from the store. When refreshes overlap, the
// most recently started one that completes wins; an older load finishing
// later is discarded.
func (a *Accessor[T]) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.started++
	seq := a.started
	a.loading = true
	a.mu.Unlock()

	items, err := loadAll[T](ctx, a.store, a.collection, a.log)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq == a.started {
		a.loading = false
	}
	if err != nil {
		a.log.Error("refresh failed", logger.Error(err))
		return err
	}
	if seq < a.applied {
		return nil
	}
	a.items = items
	a.applied = seq
	return nil
}

// Get reads one record straight from the store.
func (a *Accessor[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	raw, err := a.store.Get(ctx, a.collection, id)
	if err != nil {
		return zero, err
	}
	return types.Decode[T](raw)
}

// Add assigns a fresh UUID v7 id and, if unset, createdAt, then persists
// the record and refreshes the mirror. It returns the stored record.
func (a *Accessor[T]) Add(ctx context.Context, doc T) (T, error) {
	var zero T
	fields, err := toFields(doc)
	if err != nil {
		return zero, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return zero, fmt.Errorf("generating id: %w", err)
	}
	fields[fieldID] = id.String()
	if isZeroNumber(fields[fieldCreatedAt]) {
		fields[fieldCreatedAt] = a.now().UnixMilli()
	}

	return a.write(ctx, nil, fields)
}

// Update shallow-merges patch, keyed by JSON field name, onto the stored
// record, stamps updatedAt and persists the result. The id cannot change.
// Updating a missing record returns ErrNotFound.
func (a *Accessor[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T
	raw, err := a.store.Get(ctx, a.collection, id)
	if errors.Is(err, types.ErrNotFound) {
		a.log.Warn("update of missing record", logger.String("id", id))
		return zero, err
	}
	if err != nil {
		return zero, err
	}

	prev, err := types.Decode[T](raw)
	if err != nil {
		return zero, err
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return zero, err
	}
	for k, v := range patch {
		if k == fieldID {
			if s, ok := v.(string); !ok || s != id {
				return zero, fmt.Errorf("%w: id", types.ErrImmutableField)
			}
			continue
		}
		fields[k] = v
	}
	fields[fieldUpdatedAt] = a.now().UnixMilli()

	return a.write(ctx, &prev, fields)
}

// Remove deletes the record and refreshes the mirror.
func (a *Accessor[T]) Remove(ctx context.Context, id string) error {
	if err := a.store.Delete(ctx, a.collection, id); err != nil {
		a.log.Error("remove failed", logger.String("id", id), logger.Error(err))
		return err
	}
	return a.Refresh(ctx)
}

// Watch refreshes the mirror every time b is bumped, until ctx is done.
// It returns immediately; the returned channel is closed when watching stops.
func (a *Accessor[T]) Watch(ctx context.Context, b *invalidate.Broadcaster) <-chan struct{} {
	versions, cancel := b.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-versions:
				if !ok {
					return
				}
				a.log.Debug("data version changed", logger.Uint64("version", v))
				_ = a.Refresh(ctx)
			}
		}
	}()
	return done
}

// write validates fields as T, runs the guards, persists the raw fields and
// refreshes. The raw map is stored so fields unknown to T survive.
func (a *Accessor[T]) write(ctx context.Context, prev *T, fields map[string]any) (T, error) {
	var zero T
	raw, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	next, err := types.Decode[T](raw)
	if err != nil {
		return zero, err
	}

	for _, guard := range a.guards {
		if err := guard(ctx, a.store, prev, next); err != nil {
			return zero, err
		}
	}

	if err := a.store.Put(ctx, a.collection, raw, ""); err != nil {
		a.log.Error("write failed", logger.String("id", next.DocumentID()), logger.Error(err))
		return zero, err
	}
	if err := a.Refresh(ctx); err != nil {
		return zero, err
	}
	return next, nil
}

// loadAll decodes every record of collection. Records that no longer decode
// are skipped with a warning so one bad record does not hide the rest.
func loadAll[T types.Document](ctx context.Context, store types.Store, collection string, log logger.Logger) ([]T, error) {
	values, err := store.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(values))
	for _, raw := range values {
		doc, err := types.Decode[T](raw)
		if err != nil {
			log.Warn("skipping unreadable record", logger.Error(err))
			continue
		}
		items = append(items, doc)
	}
	return items, nil
}

func toFields(doc any) (map[string]any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return decodeFields(b)
}

// decodeFields decodes a record into a field map. Numbers stay json.Number
// so large integers survive the round trip.
func decodeFields(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if fields == nil {
		fields = make(map[string]any)
	}
	return fields, nil
}

func isZeroNumber(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 0
	case float64:
		return n == 0
	case int64:
		return n == 0
	default:
		return false
	}
}
