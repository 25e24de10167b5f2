package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/pkg/focusflow"
)

const modulePath = "github.com/mesh-intelligence/focusflow"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the focusflow version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.emit(cmd.OutOrStdout(),
				fmt.Sprintf("focusflow v%s\nmodule: %s", focusflow.Version, modulePath),
				map[string]string{"version": focusflow.Version, "module": modulePath})
		},
	}
}
