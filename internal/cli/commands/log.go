package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/startrc/internal/state"
	"github.com/leapstack-labs/startrc/pkg/core"
)

// LogOptions holds options for the log command.
type LogOptions struct {
	SessionID    string
	FailuresOnly bool
}

// NewLogCommand creates the log command.
func NewLogCommand() *cobra.Command {
	opts := &LogOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the log of a persisted session",
		Long:  `Render the most recent (or a specific) persisted session as a table.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLog(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "Session ID (default: most recent)")
	cmd.Flags().BoolVar(&opts.FailuresOnly, "failures", false, "Show only the failure stream")

	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions) error {
	cfg := configFrom(cmd)
	if cfg.StatePath == "" {
		return fmt.Errorf("no state_path configured; session history is disabled")
	}

	store := state.New(loggerFrom(cmd))
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	var (
		sess *core.SessionRecord
		err  error
	)
	if opts.SessionID != "" {
		sess, err = store.GetSession(opts.SessionID)
	} else {
		sess, err = store.GetLatestSession()
	}
	if err != nil {
		return err
	}

	entries, err := store.GetEntries(sess.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s  dir=%s  started=%s  %d loaded, %d failed\n",
		sess.ID, sess.Dir, sess.StartedAt.Format(time.RFC3339), sess.Successes, sess.Failures)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Kind", "Fragment", "Elapsed", "Message"})
	for _, e := range entries {
		if opts.FailuresOnly && e.Kind != core.EntryFailure {
			continue
		}
		elapsed := ""
		if e.Kind == core.EntrySuccess {
			elapsed = fmt.Sprintf("%dms", e.ElapsedMS)
		}
		t.AppendRow(table.Row{string(e.Kind), e.Name, elapsed, e.Message})
	}
	t.Render()
	return nil
}
