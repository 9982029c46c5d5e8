// Package cli provides the command-line interface for startrc.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/startrc/internal/cli/commands"
	"github.com/leapstack-labs/startrc/internal/cli/config"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "startrc",
		Short: "startrc - deterministic startup fragment loader",
		Long: `startrc loads a directory of Starlark configuration fragments in a
deterministic, platform-aware order: a sorted default pass over fragments
named by convention (00_util.star, 99_keys.star, ...), followed by one pass
per applicable platform prefix (windows-, linux-, nw-, ...).

Per-fragment failures never abort a session; every outcome is recorded in
the session log.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := commands.WithConfig(cmd.Context(), cfg)
			ctx = commands.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./startrc.yaml)")
	rootCmd.PersistentFlags().String("root-dir", "", "Fragment directory")
	rootCmd.PersistentFlags().Bool("compile-enabled", false, "Byte-compile stale fragments before loading")
	rootCmd.PersistentFlags().String("log-visibility", "", "Log presentation policy (always|errorsOnly|never)")
	rootCmd.PersistentFlags().String("default-pattern", "", "Pattern for the default pass")
	rootCmd.PersistentFlags().String("state", "", "Path to the session-history database")
	rootCmd.PersistentFlags().String("listen-addr", "", "Address for the serve command")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewLogCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("command failed", "error", err)
		os.Exit(1)
	}
}
