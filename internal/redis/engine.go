// Package redis implements the Store over a Redis server. Each collection is
// a hash of key to raw JSON; batches are applied with MULTI/EXEC.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

var _ types.Store = (*Engine)(nil)

// Engine implements types.Store on Redis.
type Engine struct {
	mu     sync.RWMutex
	client *redis.Client
	keys   keys
	log    logger.Logger
}

// NewEngine creates a closed Redis engine. Call Open to connect.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{log: log.With(logger.String("backend", types.BackendRedis))}
}

// Open connects with retry and upgrades the schema. Open on an open engine
// returns nil.
func (e *Engine) Open(ctx context.Context, config types.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return nil
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendRedis {
		return fmt.Errorf("%w: redis engine cannot serve %q", types.ErrBackendUnknown, config.Backend)
	}

	rc := config.Redis.WithDefaults()
	client, err := Connect(ctx, optionsFromConfig(rc), e.log)
	if err != nil {
		return err
	}

	k := keys{prefix: rc.KeyPrefix}
	if err := migrate(ctx, client, k, config.DataDir, e.log); err != nil {
		client.Close()
		return err
	}

	e.client = client
	e.keys = k
	return nil
}

// Close releases the client. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// SchemaVersion returns the persisted schema version.
func (e *Engine) SchemaVersion(ctx context.Context) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.client == nil {
		return 0, types.ErrStoreClosed
	}
	return schemaVersion(ctx, e.client, e.keys)
}

// Get returns the raw record stored under key.
func (e *Engine) Get(ctx context.Context, collection, key string) (json.RawMessage, error) {
	if err := types.CheckCollection(collection); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, types.ErrInvalidID
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.client == nil {
		return nil, types.ErrStoreClosed
	}

	value, err := e.client.HGet(ctx, e.keys.collection(collection), key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", collection, key, err)
	}
	return json.RawMessage(value), nil
}

// GetAll returns every record of the collection in key order.
func (e *Engine) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	entries, err := e.GetAllEntries(ctx, collection)
	if err != nil {
		return nil, err
	}
	values := make([]json.RawMessage, len(entries))
	for i, en := range entries {
		values[i] = en.Value
	}
	return values, nil
}

// GetAllEntries returns every key/value pair of the collection in key order.
func (e *Engine) GetAllEntries(ctx context.Context, collection string) ([]types.Entry, error) {
	if err := types.CheckCollection(collection); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.client == nil {
		return nil, types.ErrStoreClosed
	}
	return hashEntries(ctx, e.client, e.keys.collection(collection))
}

// Put validates and upserts one record.
func (e *Engine) Put(ctx context.Context, collection string, value json.RawMessage, key string) error {
	key, value, err := types.PrepareRecord(collection, value, key)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return types.ErrStoreClosed
	}
	if err := e.client.HSet(ctx, e.keys.collection(collection), key, string(value)).Err(); err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, key, err)
	}
	return nil
}

// PutAll validates every record, then upserts them in one MULTI/EXEC.
func (e *Engine) PutAll(ctx context.Context, collection string, values []json.RawMessage) error {
	batch := types.NewBatch()
	for _, v := range values {
		batch.Put(collection, "", v)
	}
	return e.Apply(ctx, batch)
}

// Delete removes the record stored under key.
func (e *Engine) Delete(ctx context.Context, collection, key string) error {
	if err := types.CheckCollection(collection); err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidID
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return types.ErrStoreClosed
	}

	n, err := e.client.HDel(ctx, e.keys.collection(collection), key).Result()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Clear removes every record of the collection.
func (e *Engine) Clear(ctx context.Context, collection string) error {
	if err := types.CheckCollection(collection); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return types.ErrStoreClosed
	}
	if err := e.client.Del(ctx, e.keys.collection(collection)).Err(); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	return nil
}

// Apply validates every operation of the batch, then writes them all in one
// MULTI/EXEC.
func (e *Engine) Apply(ctx context.Context, batch *types.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	ops := make([]types.BatchOp, 0, batch.Len())
	for _, op := range batch.Ops() {
		key, value, err := types.PrepareRecord(op.Collection, op.Value, op.Key)
		if err != nil {
			return err
		}
		ops = append(ops, types.BatchOp{Collection: op.Collection, Key: key, Value: value})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return types.ErrStoreClosed
	}

	_, err := e.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			pipe.HSet(ctx, e.keys.collection(op.Collection), op.Key, string(op.Value))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("applying batch: %w", err)
	}
	e.log.Debug("batch applied", logger.Int("records", len(ops)))
	return nil
}

func hashEntries(ctx context.Context, client redis.Cmdable, key string) ([]types.Entry, error) {
	m, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	entries := make([]types.Entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, types.Entry{Key: k, Value: json.RawMessage(v)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
