package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/startrc/internal/state"
	"github.com/leapstack-labs/startrc/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve session history over HTTP",
		Long:  `Expose persisted session logs as a JSON API for inspection tooling.`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := configFrom(cmd)
	if cfg.StatePath == "" {
		return fmt.Errorf("no state_path configured; session history is disabled")
	}
	logger := loggerFrom(cmd)

	store := state.New(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	srv, err := ui.NewServer(ui.Config{Store: store, Addr: cfg.ListenAddr, Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
