// Package schema declares the versioned collection layout of the store and
// the migration steps that upgrade an older layout. Engines run the steps
// against their own transaction type through the Tx interface.
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 3

// LegacyArchiveFile receives the records of the version 1 achievements
// collection before it is dropped.
const LegacyArchiveFile = "legacy-achievements.jsonl"

// Tx is the surface a migration step runs against. Every method must be
// idempotent so an interrupted upgrade can be re-run.
type Tx interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name string) error
	DropCollection(ctx context.Context, name string) error
	Entries(ctx context.Context, name string) ([]types.Entry, error)
	Put(ctx context.Context, name, key string, value json.RawMessage) error
}

// ErrNoArchiveDir is returned when legacy records must be archived but no
// data directory was given.
var ErrNoArchiveDir = errors.New("no data directory to archive legacy records")

// Env carries the side inputs of migration steps.
type Env struct {
	// DataDir receives archive files. It may be empty only while nothing
	// needs archiving.
	DataDir string
	Logger  logger.Logger
	Now     func() time.Time
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = logger.Nop()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// Step upgrades the schema from Version-1 to Version.
type Step struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx Tx, env Env) error
}

// Steps lists every migration in version order.
var Steps = []Step{
	{
		Version:     1,
		Description: "create document and key-value collections",
		Up:          createInitialCollections,
	},
	{
		Version:     2,
		Description: "replace legacy achievements with milestones",
		Up:          replaceAchievementsWithMilestones,
	},
	{
		Version:     3,
		Description: "create manual achievements log",
		Up:          createAchievementsLog,
	},
}

// Pending returns the steps needed to move a store at version from to
// CurrentVersion, in order.
func Pending(from int) []Step {
	var steps []Step
	for _, s := range Steps {
		if s.Version > from {
			steps = append(steps, s)
		}
	}
	return steps
}

// Run executes step against tx with env defaults applied and logs it.
func Run(ctx context.Context, step Step, tx Tx, env Env) error {
	env = env.withDefaults()
	env.Logger.Info("applying schema migration",
		logger.Int("version", step.Version),
		logger.String("description", step.Description))
	return step.Up(ctx, tx, env)
}

// version1Collections is the collection set of the first schema, which still
// carried the legacy achievements collection.
var version1Collections = []string{
	types.CollectionTasks,
	types.CollectionNotes,
	types.CollectionJournal,
	types.CollectionGoals,
	types.CollectionTimelines,
	types.CollectionFolders,
	types.CollectionAchievements,
	types.CollectionFeedback,
	types.CollectionUserProfile,
	types.CollectionSettings,
}

func createInitialCollections(ctx context.Context, tx Tx, _ Env) error {
	for _, name := range version1Collections {
		if err := tx.CreateCollection(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func createAchievementsLog(ctx context.Context, tx Tx, _ Env) error {
	return tx.CreateCollection(ctx, types.CollectionAchievements)
}
