package collection

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Tasks returns the accessor for tasks. A new or changed parent reference
// must resolve and must not form a cycle.
func Tasks(store types.Store, log logger.Logger) *Accessor[types.Task] {
	return New[types.Task](store, types.CollectionTasks, log, taskParentGuard(log))
}

// Notes returns the accessor for notes. Share ids are unique and a new or
// changed folder must be a note folder.
func Notes(store types.Store, log logger.Logger) *Accessor[types.Note] {
	return New[types.Note](store, types.CollectionNotes, log,
		shareIDGuard(log),
		folderGuard(log, types.FolderTypeNote, func(n types.Note) string { return n.FolderID }))
}

// Journal returns the accessor for journal entries. A new or changed folder
// must be a journal folder.
func Journal(store types.Store, log logger.Logger) *Accessor[types.JournalEntry] {
	return New[types.JournalEntry](store, types.CollectionJournal, log,
		folderGuard(log, types.FolderTypeJournal, func(j types.JournalEntry) string { return j.FolderID }))
}

// Goals returns the accessor for goals. A goal keeps its type for life.
func Goals(store types.Store, log logger.Logger) *Accessor[types.Goal] {
	return New[types.Goal](store, types.CollectionGoals, log, goalTypeGuard)
}

// Folders returns the accessor for folders. A folder keeps its type for life.
func Folders(store types.Store, log logger.Logger) *Accessor[types.Folder] {
	return New[types.Folder](store, types.CollectionFolders, log, folderTypeGuard)
}

func Timelines(store types.Store, log logger.Logger) *Accessor[types.Timeline] {
	return New[types.Timeline](store, types.CollectionTimelines, log)
}

func Achievements(store types.Store, log logger.Logger) *Accessor[types.Achievement] {
	return New[types.Achievement](store, types.CollectionAchievements, log)
}

func Feedback(store types.Store, log logger.Logger) *Accessor[types.FeedbackItem] {
	return New[types.FeedbackItem](store, types.CollectionFeedback, log)
}

func taskParentGuard(log logger.Logger) Guard[types.Task] {
	return func(ctx context.Context, store types.Store, prev *types.Task, next types.Task) error {
		if next.ParentID == "" || (prev != nil && prev.ParentID == next.ParentID) {
			return nil
		}
		existing, err := loadAll[types.Task](ctx, store, types.CollectionTasks, log)
		if err != nil {
			return err
		}
		if err := types.CheckTaskParent(existing, next); err != nil {
			return fmt.Errorf("task %s parent %s: %w", next.ID, next.ParentID, err)
		}
		return nil
	}
}

func shareIDGuard(log logger.Logger) Guard[types.Note] {
	return func(ctx context.Context, store types.Store, _ *types.Note, next types.Note) error {
		if next.ShareID == "" {
			return nil
		}
		existing, err := loadAll[types.Note](ctx, store, types.CollectionNotes, log)
		if err != nil {
			return err
		}
		return types.CheckShareID(existing, next)
	}
}

func folderGuard[T types.Document](log logger.Logger, want string, folderOf func(T) string) Guard[T] {
	return func(ctx context.Context, store types.Store, prev *T, next T) error {
		folderID := folderOf(next)
		if folderID == "" || (prev != nil && folderOf(*prev) == folderID) {
			return nil
		}
		folders, err := loadAll[types.Folder](ctx, store, types.CollectionFolders, log)
		if err != nil {
			return err
		}
		if err := types.CheckFolderType(folders, folderID, want); err != nil {
			return fmt.Errorf("folder %s: %w", folderID, err)
		}
		return nil
	}
}

func goalTypeGuard(_ context.Context, _ types.Store, prev *types.Goal, next types.Goal) error {
	if prev != nil && prev.Type != next.Type {
		return fmt.Errorf("%w: goal type", types.ErrImmutableField)
	}
	return nil
}

func folderTypeGuard(_ context.Context, _ types.Store, prev *types.Folder, next types.Folder) error {
	if prev != nil && prev.Type != next.Type {
		return fmt.Errorf("%w: folder type", types.ErrImmutableField)
	}
	return nil
}
