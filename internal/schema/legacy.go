package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/focusflow/internal/jsonl"
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// legacyAchievement is the version 1 shape of a system-awarded badge.
type legacyAchievement struct {
	ID         string `json:"id"`
	AchievedOn int64  `json:"achievedOn"`
}

// replaceAchievementsWithMilestones introduces the milestones collection and
// drops the legacy achievements collection. Legacy records are not lost:
// every record is archived to LegacyArchiveFile, and records whose id names a
// current milestone are carried over into milestones.
func replaceAchievementsWithMilestones(ctx context.Context, tx Tx, env Env) error {
	if err := tx.CreateCollection(ctx, types.CollectionMilestones); err != nil {
		return err
	}

	exists, err := tx.HasCollection(ctx, types.CollectionAchievements)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	entries, err := tx.Entries(ctx, types.CollectionAchievements)
	if err != nil {
		return fmt.Errorf("reading legacy achievements: %w", err)
	}

	if len(entries) > 0 {
		if err := archiveLegacy(env, entries); err != nil {
			return err
		}
		carried, err := carryOverMilestones(ctx, tx, env, entries)
		if err != nil {
			return err
		}
		env.Logger.Info("migrated legacy achievements",
			logger.Int("records", len(entries)),
			logger.Int("milestones", carried))
	}

	return tx.DropCollection(ctx, types.CollectionAchievements)
}

func archiveLegacy(env Env, entries []types.Entry) error {
	if env.DataDir == "" {
		if uncarried := countUncarried(entries); uncarried > 0 {
			return fmt.Errorf("archiving %d legacy achievements: %w", uncarried, ErrNoArchiveDir)
		}
		env.Logger.Warn("no data directory; legacy achievements carried over without an archive",
			logger.Int("records", len(entries)))
		return nil
	}
	records := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		records[i] = e.Value
	}
	path := filepath.Join(env.DataDir, LegacyArchiveFile)
	if err := jsonl.Write(path, records); err != nil {
		return fmt.Errorf("archiving legacy achievements: %w", err)
	}
	return nil
}

// countUncarried returns how many entries do not name a current milestone and
// so would survive only in the archive.
func countUncarried(entries []types.Entry) int {
	n := 0
	for _, e := range entries {
		var legacy legacyAchievement
		if err := json.Unmarshal(e.Value, &legacy); err != nil {
			n++
			continue
		}
		if _, ok := types.LookupMilestone(types.MilestoneID(legacy.ID)); !ok {
			n++
		}
	}
	return n
}

func carryOverMilestones(ctx context.Context, tx Tx, env Env, entries []types.Entry) (int, error) {
	carried := 0
	for _, e := range entries {
		var legacy legacyAchievement
		if err := json.Unmarshal(e.Value, &legacy); err != nil {
			env.Logger.Warn("skipping unreadable legacy achievement",
				logger.String("key", e.Key), logger.Error(err))
			continue
		}
		def, ok := types.LookupMilestone(types.MilestoneID(legacy.ID))
		if !ok {
			continue
		}
		achievedOn := legacy.AchievedOn
		if achievedOn == 0 {
			achievedOn = env.Now().UnixMilli()
		}
		value, err := json.Marshal(types.NewMilestone(def, achievedOn))
		if err != nil {
			return carried, err
		}
		if err := tx.Put(ctx, types.CollectionMilestones, string(def.ID), value); err != nil {
			return carried, fmt.Errorf("carrying over milestone %s: %w", def.ID, err)
		}
		carried++
	}
	return carried, nil
}
