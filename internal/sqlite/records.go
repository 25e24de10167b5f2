package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Get returns the raw record stored under key.
func (b *Backend) Get(ctx context.Context, collection, key string) (json.RawMessage, error) {
	if err := types.CheckCollection(collection); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, types.ErrStoreClosed
	}

	var value string
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT "value" FROM %s WHERE "key" = ?`, quoteIdent(collection)), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", collection, key, err)
	}
	return json.RawMessage(value), nil
}

// GetAll returns every record of the collection in key order.
func (b *Backend) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	entries, err := b.GetAllEntries(ctx, collection)
	if err != nil {
		return nil, err
	}
	values := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values, nil
}

// GetAllEntries returns every key/value pair of the collection in key order.
func (b *Backend) GetAllEntries(ctx context.Context, collection string) ([]types.Entry, error) {
	if err := types.CheckCollection(collection); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, types.ErrStoreClosed
	}
	return selectEntries(ctx, b.db, collection)
}

// Put validates and upserts one record.
func (b *Backend) Put(ctx context.Context, collection string, value json.RawMessage, key string) error {
	key, value, err := types.PrepareRecord(collection, value, key)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return types.ErrStoreClosed
	}
	return upsert(ctx, b.db, collection, key, value)
}

// PutAll validates every record, then upserts them in one transaction.
func (b *Backend) PutAll(ctx context.Context, collection string, values []json.RawMessage) error {
	batch := types.NewBatch()
	for _, v := range values {
		batch.Put(collection, "", v)
	}
	return b.Apply(ctx, batch)
}

// Delete removes the record stored under key.
func (b *Backend) Delete(ctx context.Context, collection, key string) error {
	if err := types.CheckCollection(collection); err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return types.ErrStoreClosed
	}

	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE "key" = ?`, quoteIdent(collection)), key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Clear removes every record of the collection.
func (b *Backend) Clear(ctx context.Context, collection string) error {
	if err := types.CheckCollection(collection); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return types.ErrStoreClosed
	}

	if _, err := b.db.ExecContext(ctx, "DELETE FROM "+quoteIdent(collection)); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	return nil
}

// Apply validates every operation of the batch and upserts them all in one
// transaction. A validation or write failure leaves the store unchanged.
func (b *Backend) Apply(ctx context.Context, batch *types.Batch) error {
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

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return types.ErrStoreClosed
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		if err := upsert(ctx, tx, op.Collection, op.Key, op.Value); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}

	b.log.Debug("batch applied", logger.Int("records", len(ops)))
	return nil
}
