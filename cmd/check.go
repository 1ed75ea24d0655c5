package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/flowmend/internal/ingest"
	"github.com/agentic-research/flowmend/internal/report"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file ...]",
		Short: "Run the import compatibility check on the named records, or on all of them",
		Long: `check is stricter than verify: every node needs a name, a type and a
two-element position, and every connections entry needs a "main" list.
File names are relative to --dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.setup(cmd, nil)
			if err != nil {
				return err
			}
			fsys, err := ingest.Open(cfg.Dir)
			if err != nil {
				return err
			}
			results, err := ingest.Check(cmd.Context(), fsys, cfg.Pattern, args)
			if err != nil {
				return err
			}
			checks := report.FoldChecks(results)
			report.NewPrinter(cmd.OutOrStdout()).Checks(checks)
			if checks.Failed > 0 {
				return fmt.Errorf("%d record(s) failed the import compatibility check", checks.Failed)
			}
			return nil
		},
	}
}
