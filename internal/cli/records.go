package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/pkg/types"
)

var collectionNames = strings.Join(types.AllCollections(), ", ")

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <key>",
		Short: "Print one record",
		Long:  "Get prints the raw record stored under key.\n\nCollections: " + collectionNames,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				raw, err := store.Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return storeError(fmt.Errorf("get %s/%s: %w", args[0], args[1], err))
				}
				return printJSON(cmd.OutOrStdout(), raw)
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection>",
		Short: "Print every record of a collection",
		Long: "List prints the records of a document collection as an array, or the key/value\n" +
			"entries of a key-value collection.\n\nCollections: " + collectionNames,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]
			return a.withStore(cmd.Context(), func(store types.Store) error {
				if types.IsKeyValue(collection) {
					entries, err := store.GetAllEntries(cmd.Context(), collection)
					if err != nil {
						return storeError(err)
					}
					return printJSON(cmd.OutOrStdout(), entries)
				}
				values, err := store.GetAll(cmd.Context(), collection)
				if err != nil {
					return storeError(err)
				}
				return printJSON(cmd.OutOrStdout(), values)
			})
		},
	}
}

func newPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <collection> <json> [key]",
		Short: "Upsert one raw record",
		Long: "Put validates and upserts a record without applying the record guards.\n" +
			"Document records are keyed by their id; key-value collections need a key.",
		Example: "  focusflow put settings 14 exportReminderFrequency\n" +
			`  focusflow put folders '{"id":"f1","name":"Work","type":"note"}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseJSONArg(args[1])
			if err != nil {
				return err
			}
			var key string
			if len(args) == 3 {
				key = args[2]
			}
			return a.withStore(cmd.Context(), func(store types.Store) error {
				if err := store.Put(cmd.Context(), args[0], raw, key); err != nil {
					return storeError(err)
				}
				return a.emit(cmd.OutOrStdout(), "ok", map[string]bool{"ok": true})
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <key>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				if err := store.Delete(cmd.Context(), args[0], args[1]); err != nil {
					return storeError(fmt.Errorf("delete %s/%s: %w", args[0], args[1], err))
				}
				return a.emit(cmd.OutOrStdout(), "deleted", map[string]string{"deleted": args[1]})
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <collection>",
		Short: "Delete every record of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				if err := store.Clear(cmd.Context(), args[0]); err != nil {
					return storeError(err)
				}
				return a.emit(cmd.OutOrStdout(), "cleared", map[string]string{"cleared": args[0]})
			})
		},
	}
}
