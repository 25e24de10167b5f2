package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/internal/schema"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// schemaTx runs migration steps as plain commands. Redis cannot read inside
// MULTI, so each step relies on the idempotence of schema.Tx and the
// version field is written only after the step succeeds.
type schemaTx struct {
	client redis.Cmdable
	keys   keys
}

func (t *schemaTx) HasCollection(ctx context.Context, name string) (bool, error) {
	ok, err := t.client.SIsMember(ctx, t.keys.collections(), name).Result()
	if err != nil {
		return false, fmt.Errorf("looking up collection %s: %w", name, err)
	}
	return ok, nil
}

func (t *schemaTx) CreateCollection(ctx context.Context, name string) error {
	if err := t.client.SAdd(ctx, t.keys.collections(), name).Err(); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	return nil
}

func (t *schemaTx) DropCollection(ctx context.Context, name string) error {
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, t.keys.collection(name))
		pipe.SRem(ctx, t.keys.collections(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("dropping collection %s: %w", name, err)
	}
	return nil
}

func (t *schemaTx) Entries(ctx context.Context, name string) ([]types.Entry, error) {
	return hashEntries(ctx, t.client, t.keys.collection(name))
}

func (t *schemaTx) Put(ctx context.Context, name, key string, value json.RawMessage) error {
	if err := t.client.HSet(ctx, t.keys.collection(name), key, string(value)).Err(); err != nil {
		return fmt.Errorf("writing %s/%s: %w", name, key, err)
	}
	return nil
}

func schemaVersion(ctx context.Context, client redis.Cmdable, k keys) (int, error) {
	v, err := client.HGet(ctx, k.meta(), schemaVersionField).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

func migrate(ctx context.Context, client redis.Cmdable, k keys, dataDir string, log logger.Logger) error {
	version, err := schemaVersion(ctx, client, k)
	if err != nil {
		return err
	}
	if version > schema.CurrentVersion {
		log.Warn("database schema is newer than this build",
			logger.Int("version", version),
			logger.Int("supported", schema.CurrentVersion))
		return nil
	}

	tx := &schemaTx{client: client, keys: k}
	env := schema.Env{DataDir: dataDir, Logger: log}
	for _, step := range schema.Pending(version) {
		if err := schema.Run(ctx, step, tx, env); err != nil {
			return fmt.Errorf("schema version %d: %w", step.Version, err)
		}
		if err := client.HSet(ctx, k.meta(), schemaVersionField, step.Version).Err(); err != nil {
			return fmt.Errorf("recording schema version %d: %w", step.Version, err)
		}
	}
	return nil
}
