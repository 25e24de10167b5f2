package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/internal/paths"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

type initResult struct {
	ConfigDir     string `json:"config_dir"`
	DataDir       string `json:"data_dir"`
	Backend       string `json:"backend"`
	SchemaVersion int    `json:"schema_version"`
	ConfigCreated bool   `json:"config_created"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize focusflow storage",
		Long:  "Create the configuration directory and a default config.yaml, then open the store and upgrade its schema.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return sysError(fmt.Errorf("create config directory: %w", err))
			}
			created, err := writeConfigIfMissing(a.configDir)
			if err != nil {
				return sysError(fmt.Errorf("write config: %w", err))
			}
			if created {
				// Pick up the file just written.
				if a.settings, err = loadSettings(a.configDir); err != nil {
					return userError(err)
				}
			}

			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}
			res := initResult{
				ConfigDir:     a.configDir,
				DataDir:       cfg.DataDir,
				Backend:       cfg.Backend,
				ConfigCreated: created,
			}
			err = a.withStore(cmd.Context(), func(store types.Store) error {
				v, err := store.SchemaVersion(cmd.Context())
				if err != nil {
					return storeError(err)
				}
				res.SchemaVersion = v
				return nil
			})
			if err != nil {
				return err
			}

			text := fmt.Sprintf("focusflow initialized\n  config: %s\n  data:   %s\n  schema: v%d",
				paths.ConfigFile(a.configDir), res.DataDir, res.SchemaVersion)
			return a.emit(cmd.OutOrStdout(), text, res)
		},
	}
}
