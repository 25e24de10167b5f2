package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/internal/backup"
	"github.com/mesh-intelligence/focusflow/internal/invalidate"
	"github.com/mesh-intelligence/focusflow/internal/milestone"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file of every collection",
		Long:  "Export writes focusflow-backup-YYYY-MM-DD.json to the output directory and records the export date.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				path, err := backup.NewExporter(store, a.log).WriteFile(cmd.Context(), outDir, a.now())
				if err != nil {
					return sysError(fmt.Errorf("export: %w", err))
				}
				return a.emit(cmd.OutOrStdout(), "exported "+path, map[string]string{"path": path})
			})
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for the backup file")
	return cmd
}

type importResult struct {
	File       string         `json:"file"`
	Counts     map[string]int `json:"counts"`
	Milestones []string       `json:"milestones"`
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a backup file into the store",
		Long: "Import validates the whole backup file before writing anything, then merges it:\n" +
			"records with matching ids are replaced, new ids are added, nothing is deleted.\n" +
			"Milestones earned by the imported data are awarded afterwards.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				var b invalidate.Broadcaster
				importer := backup.NewImporter(store, &b, a.log)
				importer.OnStatus(func(status backup.Status, err error) {
					if !a.flags.jsonMode && status == backup.StatusImporting {
						fmt.Fprintln(cmd.ErrOrStderr(), "Importing...")
					}
				})

				res, err := importer.ImportFile(cmd.Context(), args[0])
				if backup.IsRejected(err) {
					return userError(err)
				}
				if err != nil {
					return sysError(err)
				}

				out := importResult{File: args[0], Counts: res.Counts, Milestones: []string{}}
				svc := milestone.NewService(store, a.notifier(cmd), a.log)
				ids, err := svc.Evaluate(cmd.Context(), false)
				if err != nil {
					return storeError(err)
				}
				for _, id := range ids {
					out.Milestones = append(out.Milestones, string(id))
				}
				return a.emit(cmd.OutOrStdout(), "Import successful! "+formatCounts(res.Counts), out)
			})
		},
	}
}

func newReminderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reminder",
		Short: "Report whether a backup export is due",
		Long: "Reminder compares the last export date with the exportReminderFrequency setting\n" +
			"(days, default 30, 0 disables the reminder). It exits 0 either way.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				due, err := backup.NewExporter(store, a.log).ReminderDue(cmd.Context(), a.now())
				if err != nil {
					return storeError(err)
				}
				text := "no backup due"
				if due {
					text = "It's been a while since your last backup. Export your data to keep it safe."
				}
				return a.emit(cmd.OutOrStdout(), text, map[string]bool{"due": due})
			})
		},
	}
}

// formatCounts renders per-collection counts in name order.
func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%d", name, counts[name])
	}
	if out == "" {
		return "(no records)"
	}
	return out
}
