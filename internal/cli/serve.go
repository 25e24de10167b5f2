package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/focusflow/internal/share"
	"github.com/mesh-intelligence/focusflow/pkg/focusflow"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve shared notes over HTTP",
		Long: "Serve exposes GET /share/{shareId} for notes whose shareId is set, and GET /healthz.\n" +
			"It runs until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.settings.Share.Addr
			}
			return a.withStore(cmd.Context(), func(store types.Store) error {
				return a.serve(cmd.Context(), store, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: share.addr from config, then "+share.DefaultAddr+")")
	return cmd
}

// serve runs the share server until ctx is done or a stop signal arrives.
func (a *app) serve(ctx context.Context, store types.Store, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := share.New(store, a.log, share.Options{Addr: addr, Version: focusflow.Version})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return sysError(fmt.Errorf("share server: %w", err))
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return sysError(fmt.Errorf("stop share server: %w", err))
	}
	return <-errCh
}
