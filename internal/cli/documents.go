package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/internal/collection"
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// documentWriter adapts a typed accessor to raw command-line input.
type documentWriter interface {
	add(ctx context.Context, raw json.RawMessage) (any, error)
	update(ctx context.Context, id string, patch map[string]any) (any, error)
}

type accessorWriter[T types.Document] struct {
	acc *collection.Accessor[T]
}

func (w accessorWriter[T]) add(ctx context.Context, raw json.RawMessage) (any, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	out, err := w.acc.Add(ctx, doc)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w accessorWriter[T]) update(ctx context.Context, id string, patch map[string]any) (any, error) {
	out, err := w.acc.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// writerFor returns the guarded accessor of a user-editable collection.
// Milestones are written only by the awarder; key-value collections go
// through put.
func writerFor(store types.Store, name string, log logger.Logger) (documentWriter, error) {
	switch name {
	case types.CollectionTasks:
		return accessorWriter[types.Task]{collection.Tasks(store, log)}, nil
	case types.CollectionNotes:
		return accessorWriter[types.Note]{collection.Notes(store, log)}, nil
	case types.CollectionJournal:
		return accessorWriter[types.JournalEntry]{collection.Journal(store, log)}, nil
	case types.CollectionGoals:
		return accessorWriter[types.Goal]{collection.Goals(store, log)}, nil
	case types.CollectionFolders:
		return accessorWriter[types.Folder]{collection.Folders(store, log)}, nil
	case types.CollectionTimelines:
		return accessorWriter[types.Timeline]{collection.Timelines(store, log)}, nil
	case types.CollectionAchievements:
		return accessorWriter[types.Achievement]{collection.Achievements(store, log)}, nil
	case types.CollectionFeedback:
		return accessorWriter[types.FeedbackItem]{collection.Feedback(store, log)}, nil
	}
	if err := types.CheckCollection(name); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s cannot be edited with add or update", types.ErrCollectionNotFound, name)
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <collection> <json>",
		Short: "Create a record with a new id",
		Long: "Add creates a record through the collection accessor: it assigns a new id,\n" +
			"stamps createdAt and checks parent, folder and share id references.",
		Example: `  focusflow add tasks '{"text":"Write report","priority":2}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseJSONArg(args[1])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store types.Store) error {
				w, err := writerFor(store, args[0], a.log)
				if err != nil {
					return userError(err)
				}
				out, err := w.add(cmd.Context(), raw)
				if err != nil {
					return storeError(err)
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> <json-patch>",
		Short: "Merge fields into a record",
		Long: "Update merges the top-level fields of the patch into the stored record and\n" +
			"stamps updatedAt. The id cannot change.",
		Example: `  focusflow update tasks 0190... '{"completed":true}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch(args[2])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store types.Store) error {
				w, err := writerFor(store, args[0], a.log)
				if err != nil {
					return userError(err)
				}
				out, err := w.update(cmd.Context(), args[1], patch)
				if err != nil {
					return storeError(fmt.Errorf("update %s/%s: %w", args[0], args[1], err))
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

// parsePatch decodes a JSON object, keeping numbers exact.
func parsePatch(arg string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(arg)))
	dec.UseNumber()
	var patch map[string]any
	if err := dec.Decode(&patch); err != nil || patch == nil {
		return nil, userError(fmt.Errorf("patch must be a JSON object: %s", arg))
	}
	return patch, nil
}
