package milestone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/focusflow/internal/collection"
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Notifier displays a message to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// Service evaluates the rules against stored data and records new awards.
type Service struct {
	store    types.Store
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

// NewService returns a Service. A nil notifier discards messages.
func NewService(store types.Store, notifier Notifier, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Level, string) {})
	}
	return &Service{store: store, notifier: notifier, log: log, now: time.Now}
}

// LoadSnapshot reads every collection the rules depend on.
func (s *Service) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Tasks, err = collection.Tasks(s.store, s.log).List(ctx); err != nil {
		return snap, err
	}
	if snap.Notes, err = collection.Notes(s.store, s.log).List(ctx); err != nil {
		return snap, err
	}
	if snap.Journal, err = collection.Journal(s.store, s.log).List(ctx); err != nil {
		return snap, err
	}
	if snap.Folders, err = collection.Folders(s.store, s.log).List(ctx); err != nil {
		return snap, err
	}
	if snap.Goals, err = collection.Goals(s.store, s.log).List(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

// Unlocked returns the milestones already awarded.
func (s *Service) Unlocked(ctx context.Context) ([]types.Milestone, error) {
	values, err := s.store.GetAll(ctx, types.CollectionMilestones)
	if err != nil {
		return nil, err
	}
	out := make([]types.Milestone, 0, len(values))
	for _, raw := range values {
		m, err := types.Decode[types.Milestone](raw)
		if err != nil {
			s.log.Warn("skipping unreadable milestone", logger.Error(err))
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Evaluate awards every milestone whose condition now holds. A normal pass
// notifies once per award; a retroactive pass sends a single summary.
func (s *Service) Evaluate(ctx context.Context, retroactive bool) ([]types.MilestoneID, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.Unlocked(ctx)
	if err != nil {
		return nil, err
	}

	ids := Check(snap, unlocked)
	if len(ids) == 0 {
		return nil, nil
	}

	achievedOn := s.now().UnixMilli()
	batch := types.NewBatch()
	awarded := make([]types.MilestoneDefinition, 0, len(ids))
	for _, id := range ids {
		def, ok := types.LookupMilestone(id)
		if !ok {
			continue
		}
		value, err := json.Marshal(types.NewMilestone(def, achievedOn))
		if err != nil {
			return nil, err
		}
		batch.Put(types.CollectionMilestones, string(id), value)
		awarded = append(awarded, def)
	}
	if err := s.store.Apply(ctx, batch); err != nil {
		return nil, fmt.Errorf("recording milestones: %w", err)
	}

	for _, def := range awarded {
		s.log.Info("milestone unlocked", logger.String("id", string(def.ID)))
		if !retroactive {
			s.notifier.Notify(LevelSuccess, fmt.Sprintf("Milestone Unlocked: %s!", def.Name))
		}
	}
	if retroactive {
		s.notifier.Notify(LevelInfo,
			fmt.Sprintf("You've been awarded %d new milestone(s) for your past progress!", len(awarded)))
	}
	return ids, nil
}

// RunRetroactive evaluates once per installation, guarded by the
// hasDoneRetroactiveCheck setting. ran is false when the pass already
// happened earlier.
func (s *Service) RunRetroactive(ctx context.Context) (ids []types.MilestoneID, ran bool, err error) {
	done, err := s.retroactiveDone(ctx)
	if err != nil || done {
		return nil, false, err
	}

	ids, err = s.Evaluate(ctx, true)
	if err != nil {
		return nil, false, err
	}
	if err := s.store.Put(ctx, types.CollectionSettings, json.RawMessage(`true`), types.SettingHasDoneRetroactiveCheck); err != nil {
		return ids, true, fmt.Errorf("recording retroactive check: %w", err)
	}
	return ids, true, nil
}

func (s *Service) retroactiveDone(ctx context.Context) (bool, error) {
	raw, err := s.store.Get(ctx, types.CollectionSettings, types.SettingHasDoneRetroactiveCheck)
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var done bool
	if err := json.Unmarshal(raw, &done); err != nil {
		s.log.Warn("unreadable retroactive marker", logger.Error(err))
		return false, nil
	}
	return done, nil
}
