package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/startrc/internal/artifact"
	"github.com/leapstack-labs/startrc/internal/cli/config"
	"github.com/leapstack-labs/startrc/internal/engine"
	"github.com/leapstack-labs/startrc/internal/platform"
	"github.com/leapstack-labs/startrc/internal/starfrag"
	"github.com/leapstack-labs/startrc/internal/state"
	"github.com/leapstack-labs/startrc/pkg/core"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load all fragments from the configured directory",
		Long: `Run one loading session against the fragment directory.

The default pass loads fragments matching the naming convention in sorted
order, then each applicable platform pass loads its prefixed fragments.
Per-fragment failures are recorded, never fatal; the session log is shown
according to the configured visibility policy.`,
		Example: `  # Load fragments from ./fragments
  startrc run

  # Load with byte-compilation enabled
  startrc run --compile-enabled --root-dir /etc/app/fragments`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg := configFrom(cmd)
	logger := loggerFrom(cmd)

	runtime := starfrag.New(logger)

	resolver, err := artifact.New(artifact.Config{
		CompileEnabled: cfg.CompileEnabled,
		Compiler:       runtime,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Config{Resolver: resolver, Loader: runtime, Logger: logger})
	if err != nil {
		return err
	}

	pats := cfg.ToPlatformPatterns()
	sess, err := engine.NewSession(engine.SessionConfig{
		Dir:              cfg.RootDir,
		Facts:            platform.Detect(),
		DefaultPattern:   cfg.DefaultPattern,
		PlatformPatterns: &pats,
		Visibility:       cfg.Visibility(),
		Engine:           eng,
		Present: func(log string) {
			fmt.Fprintln(cmd.OutOrStdout(), log)
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	runLog, err := sess.Run()
	if err != nil {
		return err
	}
	completed := time.Now()

	if cfg.StatePath != "" {
		if err := persistSession(cfg, started, completed, runLog); err != nil {
			// History is best effort; the session itself succeeded.
			logger.Warn("failed to persist session history", "error", err)
		}
	}
	return nil
}

func persistSession(cfg *config.Config, started, completed time.Time, runLog *core.RunLog) error {
	if dir := filepath.Dir(cfg.StatePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	store := state.New(nil)
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	rec, entries := state.Records(state.NewSessionID(), cfg.RootDir, started, completed, runLog)
	return store.SaveSession(rec, entries)
}
