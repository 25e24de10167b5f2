package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/internal/milestone"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

type milestonesResult struct {
	Awarded  []string `json:"awarded"`
	Unlocked []string `json:"unlocked"`
	// Skipped is true when --retroactive found the one-time pass already done.
	Skipped bool `json:"skipped,omitempty"`
}

func newMilestonesCmd(a *app) *cobra.Command {
	var retroactive bool
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Award milestones whose conditions now hold",
		Long: "Milestones evaluates every milestone rule against the stored data and awards the\n" +
			"ones newly earned. --retroactive runs the one-time pass over existing data with a\n" +
			"single summary notification.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store types.Store) error {
				svc := milestone.NewService(store, a.notifier(cmd), a.log)

				res := milestonesResult{Awarded: []string{}, Unlocked: []string{}}
				var ids []types.MilestoneID
				var err error
				if retroactive {
					var ran bool
					ids, ran, err = svc.RunRetroactive(cmd.Context())
					res.Skipped = !ran
				} else {
					ids, err = svc.Evaluate(cmd.Context(), false)
				}
				if err != nil {
					return storeError(err)
				}
				for _, id := range ids {
					res.Awarded = append(res.Awarded, string(id))
				}

				unlocked, err := svc.Unlocked(cmd.Context())
				if err != nil {
					return storeError(err)
				}
				for _, m := range unlocked {
					res.Unlocked = append(res.Unlocked, string(m.ID))
				}

				text := fmt.Sprintf("%d awarded, %d of %d unlocked", len(res.Awarded), len(res.Unlocked), len(milestone.All))
				if res.Skipped {
					text = "retroactive check already done; " + text
				}
				return a.emit(cmd.OutOrStdout(), text, res)
			})
		},
	}
	cmd.Flags().BoolVar(&retroactive, "retroactive", false, "run the one-time pass over existing data")
	return cmd
}

// notifier prints milestone notifications to stderr unless --json is set.
func (a *app) notifier(cmd *cobra.Command) milestone.Notifier {
	return milestone.NotifierFunc(func(level milestone.Level, message string) {
		a.log.Debug("notification", logger.String("level", string(level)))
		if !a.flags.jsonMode {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		}
	})
}
