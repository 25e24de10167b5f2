// Package cli implements the focusflow command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/internal/paths"
	"github.com/mesh-intelligence/focusflow/pkg/focusflow"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Exit codes.
const (
	ExitSuccess   = 0
	ExitUserError = 1
	ExitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	settings  Settings
	log       logger.Logger
	now       func() time.Time
}

// NewRootCmd creates the top-level "focusflow" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "focusflow",
		Short:         "Local store for tasks, notes, journal, goals and timelines",
		Version:       focusflow.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return userError(err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newPutCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newReminderCmd(a),
		newMilestonesCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(context.Background(), NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(stderr, "focusflow:", err)
	return ExitCode(err)
}

// setup resolves the config directory, loads the configuration and builds
// the logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	settings, err := loadSettings(configDir)
	if err != nil {
		return userError(err)
	}
	log, err := logger.New(settings.LogLevel, settings.PrettyLog)
	if err != nil {
		return sysError(fmt.Errorf("build logger: %w", err))
	}

	a.configDir = configDir
	a.settings = settings
	a.log = log
	return nil
}

// exitError carries the exit code chosen for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: ExitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: ExitSysError, err: err} }

// userErrors are the sentinels that mean the request itself was wrong.
var userErrors = []error{
	types.ErrCollectionNotFound,
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidParent,
	types.ErrDuplicateShareID,
	types.ErrFolderTypeMismatch,
	types.ErrImmutableField,
	types.ErrUnknownMilestone,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrRedisAddrEmpty,
}

// storeError classifies an error returned by the store or an accessor.
func storeError(err error) error {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// ExitCode maps an error returned by the root command to an exit code.
// Errors raised by cobra itself, such as a wrong argument count, are user
// errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUserError
}
