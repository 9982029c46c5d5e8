package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/startrc/internal/filter"
	"github.com/leapstack-labs/startrc/internal/platform"
	"github.com/leapstack-labs/startrc/pkg/core"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which fragments each pass would load, without loading",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg := configFrom(cmd)

	defaultPat := cfg.DefaultPattern
	if defaultPat == nil {
		defaultPat = core.DefaultPattern
	}

	passes := []core.Pass{{Name: "default", Pattern: defaultPat, Sorted: true}}
	passes = append(passes, cfg.ToPlatformPatterns().Passes(platform.Detect())...)

	out := cmd.OutOrStdout()
	for _, pass := range passes {
		candidates, err := filter.Select(pass.Pattern, cfg.RootDir, pass.Sorted)
		if err != nil {
			return err
		}
		for _, name := range candidates {
			fmt.Fprintf(out, "%s\t%s\n", pass.Name, name)
		}
	}
	return nil
}
